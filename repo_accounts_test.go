package accounts_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	accounts "github.com/takes-jp/go-accounts"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func setupRepo(t *testing.T) accounts.Accounts {
	t.Helper()

	db, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	bunDB := bun.NewDB(db, sqlitedialect.New())
	t.Cleanup(func() { bunDB.Close() })

	repo := accounts.NewAccountsRepository(bunDB)
	require.NoError(t, repo.CreateSchema(context.Background()))

	return repo
}

func TestAccountsRepositoryCreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	created, err := repo.Create(ctx, &accounts.Account{
		Email:    "u@t.jp",
		Password: "{noop}Secret123",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, accounts.RoleUser, created.Role)

	byEmail, err := repo.FindByEmail(ctx, "u@t.jp")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
	assert.Equal(t, "{noop}Secret123", byEmail.Password)

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "u@t.jp", byID.Email)
}

func TestAccountsRepositoryNotFound(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	_, err := repo.FindByEmail(ctx, "missing@t.jp")
	assert.Error(t, err)
	assert.True(t, accounts.IsNotFound(err))

	_, err = repo.FindByID(ctx, 999)
	assert.Error(t, err)
	assert.True(t, accounts.IsNotFound(err))
}

func TestAccountsRepositoryUniqueEmail(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	_, err := repo.Create(ctx, &accounts.Account{Email: "u@t.jp", Password: "x"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &accounts.Account{Email: "u@t.jp", Password: "y"})
	assert.Error(t, err)
	assert.True(t, accounts.IsConflict(err))
}

func TestAccountsRepositoryExists(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	created, err := repo.Create(ctx, &accounts.Account{Email: "u@t.jp", Password: "x"})
	require.NoError(t, err)

	exists, err := repo.ExistsByEmail(ctx, "u@t.jp")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByEmail(ctx, "other@t.jp")
	require.NoError(t, err)
	assert.False(t, exists)

	// a record never collides with itself
	exists, err = repo.ExistsByEmailExcludingID(ctx, "u@t.jp", created.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.ExistsByEmailExcludingID(ctx, "u@t.jp", created.ID+1)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestAccountsRepositoryUpdate(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	created, err := repo.Create(ctx, &accounts.Account{Email: "u@t.jp", Password: "x"})
	require.NoError(t, err)

	created.Email = "new@t.jp"
	created.Password = "{bcrypt}hash"
	require.NoError(t, repo.Update(ctx, created))

	stored, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "new@t.jp", stored.Email)
	assert.Equal(t, "{bcrypt}hash", stored.Password)
	assert.NotNil(t, stored.UpdatedAt)

	t.Run("Update to a taken email conflicts", func(t *testing.T) {
		other, err := repo.Create(ctx, &accounts.Account{Email: "other@t.jp", Password: "x"})
		require.NoError(t, err)

		other.Email = "new@t.jp"
		err = repo.Update(ctx, other)
		assert.Error(t, err)
		assert.True(t, accounts.IsConflict(err))
	})

	t.Run("Update of a missing record is not found", func(t *testing.T) {
		err := repo.Update(ctx, &accounts.Account{ID: 9999, Email: "ghost@t.jp", Password: "x"})
		assert.Error(t, err)
		assert.True(t, accounts.IsNotFound(err))
	})
}

func TestAccountsRepositoryDelete(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	created, err := repo.Create(ctx, &accounts.Account{Email: "u@t.jp", Password: "x"})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteByID(ctx, created.ID))

	_, err = repo.FindByID(ctx, created.ID)
	assert.True(t, accounts.IsNotFound(err))

	// deleting again is a no-op
	assert.NoError(t, repo.DeleteByID(ctx, created.ID))
}

func TestAccountsRepositoryFindAll(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	for _, email := range []string{"a@t.jp", "b@t.jp", "c@t.jp"} {
		_, err := repo.Create(ctx, &accounts.Account{Email: email, Password: "x"})
		require.NoError(t, err)
	}

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a@t.jp", all[0].Email)
	assert.Equal(t, "c@t.jp", all[2].Email)
}
