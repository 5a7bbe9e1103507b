package session

// Session is the server-side record binding a user to the one refresh token
// currently allowed to renew their access.
type Session struct {
	UserID       string
	RefreshToken string
	IP           string
	UserAgent    string
}
