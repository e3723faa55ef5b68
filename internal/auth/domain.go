package auth

// Account is the credential-bearing view of a user, loaded for login and for
// building the per-request actor.
type Account struct {
	ID           int64
	Username     string
	PasswordHash string
	IsSuperuser  bool
	IsStaff      bool
	IsActive     bool
}

// LoginForm carries credentials. Username also accepts the account email.
type LoginForm struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}
