// internal/domain/rbac/entity.go
package rbac

import "time"

// Permission is one grantable action on a resource. Codename is the
// machine-readable identifier checked at request time, e.g. "order.create".
type Permission struct {
	ID          int64
	Name        string
	Codename    string
	Description string
	Resource    string
	Action      string
}

// Role is a named bundle of permissions.
type Role struct {
	ID          int64
	Name        string
	Description string
	IsDefault   bool
	CreatedAt   time.Time
}
