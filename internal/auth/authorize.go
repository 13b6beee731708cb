package auth

// Authorize reports whether user may perform the privilege want: a
// superuser always may; otherwise want must match a privilege the user
// holds directly or through any of its roles (§4.6 "authorize").
func Authorize(want Privilege, user *User, roles RoleLookup) bool {
	if user.IsSuperuser {
		return true
	}
	for _, p := range user.Privileges {
		if p.Matches(want) {
			return true
		}
	}
	for _, name := range user.Roles {
		role, ok := roles(name)
		if !ok {
			continue
		}
		for _, p := range role.Privileges {
			if p.Matches(want) {
				return true
			}
		}
	}
	return false
}

// AuthorizeAll checks every privilege in wants and short-circuits on the
// first miss (§4.6 "authorize_all").
func AuthorizeAll(wants []Privilege, user *User, roles RoleLookup) bool {
	for _, want := range wants {
		if !Authorize(want, user, roles) {
			return false
		}
	}
	return true
}
