package domain

// Principal is the authenticated identity derived from a verified access
// token. Every directory operation is scoped to its OrgID.
type Principal struct {
	UserID  int64
	OrgID   int64
	OrgSlug string
	Name    string
	Email   string
	Role    string
}
