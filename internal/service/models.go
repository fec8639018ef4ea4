package service

// SignInInput carries credentials for a password sign-in.
type SignInInput struct {
	Name     string
	Password string
}

// SignUpInput carries the fields needed to register a user. Status,
// Availability, and Role fall back to sane defaults when empty.
type SignUpInput struct {
	Name         string
	Email        string
	Password     string
	Status       string
	Availability string
	Role         string
}

// UpdateInput carries an optional-field patch for a user record. Nil
// fields are left untouched.
type UpdateInput struct {
	Name         *string
	Email        *string
	Password     *string
	Status       *string
	Availability *string
	Role         *string
}

// Session is the result of a successful authentication.
type Session struct {
	Token string
}
