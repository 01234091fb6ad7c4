package services

import "expvar"

// Counters for best-effort operations whose failures are logged and
// swallowed. Published under /debug/vars.
var (
	logoutRevocationFailures = expvar.NewInt("auth_logout_revocation_failures")
	lastLoginUpdateFailures  = expvar.NewInt("auth_last_login_update_failures")
	auditWriteFailures       = expvar.NewInt("audit_write_failures")
)
