// Package accounts provides the credential and session identity lifecycle
// for a form authenticated account store.
//
// Credentials:
//   - Stored passwords are scheme tagged ({bcrypt}..., {noop}...). Encoding
//     always uses the preferred bcrypt scheme, verification dispatches on
//     the tag and fails closed for anything it does not recognize.
//   - CredentialUpgrader runs once per successful login and transparently
//     re-encodes legacy noop credentials while the cleartext is in hand. It
//     never fails the login it rides on.
//
// Sessions:
//   - Auther verifies form logins, runs the post login hooks, and mints a
//     signed session token. SessionObject is the live per session state.
//   - Refresher swaps a session's identity for a freshly loaded one after
//     the logged in user edits their own record, keeping credentials proof
//     and transport metadata untouched. No logout/login round trip needed.
//
// Workflows:
//   - Registration, self email update, and password change are
//     validate-then-commit handlers with field scoped failures. Ownership
//     and uniqueness checks run after field validation and before any
//     store mutation; the store's unique email index backstops the
//     remaining race window.
package accounts
