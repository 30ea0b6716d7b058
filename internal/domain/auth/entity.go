// internal/domain/auth/entity.go
package auth

import "time"

// Identity statuses.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Session history closure reasons. Every destroyed session writes exactly
// one history row tagged with one of these.
const (
	ReasonCompleted      = "Completed"
	ReasonForcedLogout   = "Forced Logout"
	ReasonStatusInactive = "Status Changed to Inactive"
	ReasonUserDeleted    = "User Deleted"
	ReasonAllSessions    = "Logged Out (All Sessions)"
)

// Identity is a row in api_users: an authenticatable principal scoped to a
// business unit.
type Identity struct {
	ID           int64
	Username     string
	Password     string // PBKDF2 hash, never plaintext
	EmployeeName string
	Email        string
	Mobile       string
	BusinessID   int64
	EmployeeCode string
	Terminal     string
	Tier         string // admin | user
	Status       string // active | inactive
	AcCode       string
}

// Employee is a row in prmst, the upstream employee master table.
// Registration is only allowed for employees present and active there.
type Employee struct {
	BusinessID int64
	Code       string
	Name       string
	Status     string // "A-Active" when employable
}

// Session is the single live login record for an identity. The session
// table holds at most one row per username.
type Session struct {
	ID           int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Username     string
	BusinessID   int64
	AccessToken  string
	RefreshToken string
	Status       string
	DeviceInfo   string
	Tier         string
}

// SessionHistory is the append-only audit record written whenever a
// session is destroyed.
type SessionHistory struct {
	ID           int64
	Username     string
	BusinessID   int64
	LoginTime    time.Time
	LogoutTime   time.Time
	DeviceInfo   string
	Reason       string
	AccessToken  string
	RefreshToken string
	Tier         string
}

// BlacklistedToken is a revoked token and the moment it was revoked.
type BlacklistedToken struct {
	Token         string
	BlacklistedAt time.Time
}

// LoginAttempt tracks consecutive failures for one username.
type LoginAttempt struct {
	Username     string
	AttemptCount int
	AttemptTime  time.Time
	LockedUntil  *time.Time
	IPAddress    string
}

// Locked reports whether the record is still inside its lockout window.
func (a *LoginAttempt) Locked(now time.Time) bool {
	return a.LockedUntil != nil && a.LockedUntil.After(now)
}
