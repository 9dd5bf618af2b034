package authenticator

import "log/slog"

// Credentials for one authentication attempt. Held transiently, never
// persisted by this package.
type Credentials struct {
	TenantID      string
	UserID        string
	InstitutionID string
	Username      string
	Password      string
}

// LogValue keeps the username and password out of logs no matter how a
// Credentials value ends up in a log call.
func (c Credentials) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("tenant_id", c.TenantID),
		slog.String("user_id", c.UserID),
		slog.String("institution_id", c.InstitutionID),
		slog.String("username", "[redacted]"),
		slog.String("password", "[redacted]"),
	)
}

func (c Credentials) String() string {
	return "credentials{tenant=" + c.TenantID + " user=" + c.UserID + " institution=" + c.InstitutionID + "}"
}
