package domain

// ============================================================
// Auth: request / response types
// ============================================================

// Role gates which screens and endpoints a user can reach.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleAccountant Role = "accountant"
	RoleHR         Role = "hr"
	RoleWarehouse  Role = "warehouse"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleAccountant, RoleHR, RoleWarehouse:
		return true
	}
	return false
}

// LoginRequest is the body for POST /v1/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned by the ERP on a successful login.
type LoginResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int    `json:"expiresIn"`
	UserID      string `json:"userId"`
	UserName    string `json:"userName"`
	Role        Role   `json:"role"`
}

// Session is the authenticated caller of a request. Token is forwarded to the
// ERP on every upstream call made on the caller's behalf.
type Session struct {
	Subject string `json:"userId"`
	Name    string `json:"userName"`
	Role    Role   `json:"role"`
	Token   string `json:"-"`
}

// ============================================================
// Navigation
// ============================================================

// NavSection is one entry of the role-gated side menu.
type NavSection struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Path  string `json:"path"`
	Group string `json:"group"`
}

// Navigation is returned by GET /v1/navigation.
type Navigation struct {
	Role     Role         `json:"role"`
	Sections []NavSection `json:"sections"`
}
