package models

import "time"

// Staff roles
const (
	RoleSuperAdmin  = "super_admin"
	RoleBranchAdmin = "branch_admin"
	RoleStaff       = "staff"
)

// User is a staff profile. Invoicing configuration lives here because GST
// registration and the UPI collection account belong to the person who bills.
type User struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
	BranchID     int    `json:"branch_id"`
	IsActive     bool   `json:"is_active"`

	GSTIN       string `json:"gstin,omitempty"`
	GSTIncluded bool   `json:"gst_included"` // prices already carry GST
	UPIID       string `json:"upi_id,omitempty"`

	TOTPEnabled bool      `json:"totp_enabled"`
	CreatedAt   time.Time `json:"created_at"`
}

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	BranchID int    `json:"branch_id"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
