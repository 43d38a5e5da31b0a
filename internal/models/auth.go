package models

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is what a successful login yields.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
