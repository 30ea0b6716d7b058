// internal/pkg/jwt/claims.go
package jwt

import (
	"github.com/golang-jwt/jwt/v5"
)

// Token purposes. Access and refresh tokens carry the same identity claims
// and differ only in purpose and lifetime.
const (
	PurposeAccess  = "access"
	PurposeRefresh = "refresh"
)

// Tier values mirrored from the user table.
const (
	TierAdmin = "admin"
	TierUser  = "user"
)

// Claims is the fixed claim set embedded in every issued token. Field names
// on the wire match what the previous backend emitted so existing clients
// keep decoding them.
type Claims struct {
	Username     string `json:"username"`
	AcCode       string `json:"accode,omitempty"`
	Status       string `json:"status"`
	EmployeeCode string `json:"user_id"`
	Tier         string `json:"is_admin"`
	Terminal     string `json:"terminal,omitempty"`
	BusinessID   int64  `json:"businessId"`
	Purpose      string `json:"purpose"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the token belongs to an admin-tier identity.
func (c *Claims) IsAdmin() bool {
	return c.Tier == TierAdmin
}
