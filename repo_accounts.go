package accounts

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// Accounts is the store contract plus the persistence concerns that only the
// production repository needs (schema management).
type Accounts interface {
	AccountStore

	CreateSchema(ctx context.Context) error
}

type accountsRepo struct {
	db *bun.DB
}

var _ Accounts = (*accountsRepo)(nil)

// NewAccountsRepository returns the bun backed account store. The accounts
// table carries a UNIQUE constraint on email, so concurrent duplicate
// registrations surface as a conflict instead of racing past the existence
// check.
func NewAccountsRepository(db *bun.DB) Accounts {
	return &accountsRepo{db: db}
}

func (r *accountsRepo) CreateSchema(ctx context.Context) error {
	_, err := r.db.NewCreateTable().
		Model((*Account)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to create accounts schema")
	}
	return nil
}

func (r *accountsRepo) FindByEmail(ctx context.Context, email string) (*Account, error) {
	record := &Account{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", email).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewAccountNotFound(email)
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to select account by email")
	}
	return record, nil
}

func (r *accountsRepo) FindByID(ctx context.Context, id int64) (*Account, error) {
	record := &Account{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewAccountNotFound(id)
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to select account by id")
	}
	return record, nil
}

func (r *accountsRepo) FindAll(ctx context.Context) ([]*Account, error) {
	var records []*Account
	err := r.db.NewSelect().
		Model(&records).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to list accounts")
	}
	return records, nil
}

func (r *accountsRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	exists, err := r.db.NewSelect().
		Model((*Account)(nil)).
		Where("?TableAlias.email = ?", email).
		Exists(ctx)
	if err != nil {
		return false, errors.Wrap(err, errors.CategoryInternal, "failed to check email existence")
	}
	return exists, nil
}

func (r *accountsRepo) ExistsByEmailExcludingID(ctx context.Context, email string, id int64) (bool, error) {
	exists, err := r.db.NewSelect().
		Model((*Account)(nil)).
		Where("?TableAlias.email = ?", email).
		Where("?TableAlias.id != ?", id).
		Exists(ctx)
	if err != nil {
		return false, errors.Wrap(err, errors.CategoryInternal, "failed to check email existence")
	}
	return exists, nil
}

func (r *accountsRepo) Create(ctx context.Context, account *Account) (*Account, error) {
	account.EnsureRole()

	_, err := r.db.NewInsert().
		Model(account).
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, NewEmailConflict(account.Email)
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to create account")
	}
	return account, nil
}

func (r *accountsRepo) Update(ctx context.Context, account *Account) error {
	now := time.Now()
	account.UpdatedAt = &now

	res, err := r.db.NewUpdate().
		Model(account).
		Column("email", "password", "role", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return NewEmailConflict(account.Email)
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to update account")
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return NewAccountNotFound(account.ID)
	}

	return nil
}

func (r *accountsRepo) DeleteByID(ctx context.Context, id int64) error {
	_, err := r.db.NewDelete().
		Model((*Account)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to delete account")
	}
	return nil
}

// isUniqueViolation matches the driver messages for a violated UNIQUE
// constraint, sqlite and postgres wordings both appear here
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
