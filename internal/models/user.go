package models

// Me is the signed-in user's own profile, as returned by GET /users/me.
type Me struct {
	// ID is the user's identifier.
	ID ID `json:"id"`

	// Name is the display name of the user.
	Name string `json:"name"`

	// Email is the user's email address (unique). Used for login and invitations.
	Email string `json:"email"`

	// CreatedAt is the RFC 3339 timestamp when the account was created.
	CreatedAt string `json:"created_at"`
}

// UserSummary is the embedded user block attached to members, payments,
// splits and activity rows.
type UserSummary struct {
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Label returns the best human-readable name for the user.
func (u UserSummary) Label() string {
	if u.Name != "" {
		return u.Name
	}
	if u.Email != "" {
		return u.Email
	}
	return "Unknown"
}

// LoginResult is the token pair issued by POST /auth/login.
type LoginResult struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// RefreshResult is returned by POST /auth/refresh. RefreshToken is only set
// when the service rotates it.
type RefreshResult struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Message is the generic {"message": "..."} acknowledgement body.
type Message struct {
	Message string `json:"message"`
}
