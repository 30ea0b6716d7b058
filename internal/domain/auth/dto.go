// internal/domain/auth/dto.go
package auth

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`

	// Filled by the handler, not the client body.
	IPAddress string `json:"-"`
	UserAgent string `json:"-"`
	DeviceID  string `json:"-"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

type RegisterRequest struct {
	Username   string `json:"user_name" binding:"required"`
	Password   string `json:"password" binding:"required,min=4"`
	Email      string `json:"email" binding:"required,email"`
	Mobile     string `json:"mobile"`
	BusinessID int64  `json:"businessId" binding:"required"`
	EmployeeID string `json:"user_id" binding:"required"`
	AcCode     string `json:"accode"`

	// AdminCode grants the admin tier when it matches the configured
	// registration secret. Anything else registers a plain user.
	AdminCode string `json:"is_admin"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active inactive"`
}

// SessionInfo is the caller-visible view of an active session. Tokens are
// deliberately omitted.
type SessionInfo struct {
	LoginTime    string                 `json:"login_time"`
	LastActivity string                 `json:"last_activity"`
	DeviceInfo   map[string]interface{} `json:"device_info"`
	Status       string                 `json:"status"`
}
