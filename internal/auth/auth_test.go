package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noRoles(string) (*Role, bool) { return nil, false }

func TestAuthorizeSuperuserBypasses(t *testing.T) {
	u := &User{Name: "root", IsSuperuser: true}
	ok := Authorize(PrivilegeForTable("accounts", "select"), u, noRoles)
	assert.True(t, ok)
}

func TestAuthorizeDirectPrivilege(t *testing.T) {
	u := &User{Name: "alice", Privileges: []Privilege{PrivilegeForTable("accounts", "select")}}
	assert.True(t, Authorize(PrivilegeForTable("accounts", "select"), u, noRoles))
	assert.False(t, Authorize(PrivilegeForTable("accounts", "delete"), u, noRoles))
}

func TestAuthorizeViaRole(t *testing.T) {
	roles := map[string]*Role{
		"editor": {Name: "editor", Privileges: []Privilege{PrivilegeForTable("accounts", "update")}},
	}
	lookup := func(name string) (*Role, bool) { r, ok := roles[name]; return r, ok }
	u := &User{Name: "bob", Roles: []string{"editor"}}
	assert.True(t, Authorize(PrivilegeForTable("accounts", "update"), u, lookup))
	assert.False(t, Authorize(PrivilegeForTable("accounts", "delete"), u, lookup))
}

func TestAuthorizeAllShortCircuits(t *testing.T) {
	u := &User{Privileges: []Privilege{PrivilegeForTable("t", "select")}}
	wants := []Privilege{PrivilegeForTable("t", "select"), PrivilegeForTable("t", "delete")}
	assert.False(t, AuthorizeAll(wants, u, noRoles))
}

func TestPrivilegeAllWildcardMatches(t *testing.T) {
	granted := PrivilegeForTable("t", "all")
	assert.True(t, granted.Matches(PrivilegeForTable("t", "select")))
	assert.True(t, granted.Matches(PrivilegeForTable("t", "delete")))
	assert.False(t, granted.Matches(PrivilegeForTable("other", "select")))
}

func TestPoliceEmptyWhenRlsDisabledOrSuperuser(t *testing.T) {
	policies := []RlsPolicy{{Name: "self", Action: RlsSelect}}
	u := &User{}
	assert.Empty(t, Police(policies, false, u, RlsSelect))

	su := &User{IsSuperuser: true}
	assert.Empty(t, Police(policies, true, su, RlsSelect))
}

func TestPoliceFiltersByAction(t *testing.T) {
	policies := []RlsPolicy{
		{Name: "self-select", Action: RlsSelect},
		{Name: "self-update", Action: RlsUpdate},
		{Name: "self-all", Action: RlsAll},
	}
	u := &User{}
	got := Police(policies, true, u, RlsSelect)
	assert.Len(t, got, 2)
}

func TestHashAndVerifyPasswordRoundTrip(t *testing.T) {
	phc, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.True(t, VerifyPassword("hunter2", phc))
	assert.False(t, VerifyPassword("wrong", phc))
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	assert.False(t, VerifyPassword("hunter2", "not-a-phc-string"))
}

func TestAuthenticateSuccessAndGenericFailure(t *testing.T) {
	phc, err := HashPassword("hunter2")
	require.NoError(t, err)
	users := map[string]*User{
		"alice": {
			Name:         "alice",
			PasswordHash: phc,
			Privileges:   []Privilege{PrivilegeForDatabase("app", "connect")},
		},
	}
	lookupUser := func(name string) (*User, bool) { u, ok := users[name]; return u, ok }

	u, err := Authenticate(lookupUser, noRoles, "alice", "hunter2", "app")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Name)

	_, err = Authenticate(lookupUser, noRoles, "alice", "wrong", "app")
	assert.ErrorIs(t, err, ErrCouldNotAuthenticate)

	_, err = Authenticate(lookupUser, noRoles, "ghost", "hunter2", "app")
	assert.ErrorIs(t, err, ErrCouldNotAuthenticate)

	_, err = Authenticate(lookupUser, noRoles, "alice", "hunter2", "other_db")
	assert.ErrorIs(t, err, ErrCouldNotAuthenticate)
}
