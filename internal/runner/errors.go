package runner

import "errors"

// Sentinel errors for the category list in §7. A single generic message
// covers each category rather than per-object detail, per the
// "unauthorized" / RLS wording the spec mandates verbatim.
var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrRlsInsert      = errors.New("insertion violates row level security policy")
	ErrRlsUpdate      = errors.New("update violates row level security policy")
	ErrRlsDelete      = errors.New("delete violates row level security policy")
	ErrDiskModeTable  = errors.New("disk-backed tables are not implemented; refusing mutation")
	ErrNotSuperuser   = errors.New("only a superuser may run this statement")
	ErrSchemaQuery    = errors.New("query statements are not permitted while replaying the schema file")
	ErrNotImplemented = errors.New("not implemented")
)
