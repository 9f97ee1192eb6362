package domain

const (
	RoleSupervisor = "supervisor"
	RoleEmployee   = "employee"
)

// User is a dashboard account. Password holds a salted SHA-256 digest,
// never the plaintext.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Avatar   string `json:"avatar"`
}

// Actor identifies the user attributed in activity log entries.
type Actor struct {
	User   string `json:"user"`
	Avatar string `json:"avatar"`
}
