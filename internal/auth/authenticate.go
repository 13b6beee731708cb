package auth

import "errors"

// ErrCouldNotAuthenticate is the single generic failure returned for an
// unknown user, a wrong password, or a missing CONNECT privilege alike, so
// that no response leaks which of the three actually failed (§7
// "Authentication returns a single generic failure for both unknown-user
// and bad-password").
var ErrCouldNotAuthenticate = errors.New("could not authenticate")

// UserLookup resolves a username to its User.
type UserLookup func(name string) (*User, bool)

// Authenticate looks up username, verifies password against the stored PHC
// hash, and authorizes CONNECT on database. It returns the User on success
// and ErrCouldNotAuthenticate on any failure (§4.6 "authenticate").
func Authenticate(users UserLookup, roles RoleLookup, username, password, database string) (*User, error) {
	user, ok := users(username)
	if !ok {
		return nil, ErrCouldNotAuthenticate
	}
	if !VerifyPassword(password, user.PasswordHash) {
		return nil, ErrCouldNotAuthenticate
	}
	if !Authorize(PrivilegeForDatabase(database, "connect"), user, roles) {
		return nil, ErrCouldNotAuthenticate
	}
	return user, nil
}
