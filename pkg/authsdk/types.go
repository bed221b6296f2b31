package authsdk

// LoginRequest carries the credentials for token issuance.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned on successful token issuance. The claims-bearing
// fields describe the account the token was issued for.
type LoginResponse struct {
	JWT          string   `json:"jwt"`
	UserID       string   `json:"userId"`
	UserLogin    string   `json:"userLogin"`
	UserNicename string   `json:"userNicename"`
	UserEmail    string   `json:"userEmail"`
	Roles        []string `json:"roles"`
}

// RegisterRequest carries the fields for account creation.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Nicename string `json:"nicename,omitempty"`
}

// RegisterResponse is returned on successful account creation.
type RegisterResponse struct {
	UserID    string `json:"userId"`
	UserLogin string `json:"userLogin"`
	UserEmail string `json:"userEmail"`
}

// ResetPasswordRequest starts the forgotten-password flow for an email.
type ResetPasswordRequest struct {
	Email string `json:"email"`
}

// ChangePasswordRequest sets a new password. Anonymous callers prove their
// identity with the emailed reset token; authenticated callers with their
// current password.
type ChangePasswordRequest struct {
	Email           string `json:"email,omitempty"`
	ResetToken      string `json:"resetToken,omitempty"`
	CurrentPassword string `json:"currentPassword,omitempty"`
	NewPassword     string `json:"newPassword"`
}

// MeResponse describes the authenticated caller.
type MeResponse struct {
	UserID       string   `json:"userId"`
	UserLogin    string   `json:"userLogin"`
	UserNicename string   `json:"userNicename"`
	UserEmail    string   `json:"userEmail"`
	Roles        []string `json:"roles"`
	TokenExpires int64    `json:"tokenExpires"`
}

// StatusResponse acknowledges an accepted request that returns no data.
type StatusResponse struct {
	Status string `json:"status"`
}

// HealthChecks reports the state of each critical dependency.
type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}

// HealthResponse is returned by the liveness and readiness probes.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// ErrorResponse is the wire shape of every error body the service writes.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
