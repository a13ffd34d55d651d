package session

import (
	"encoding/json"
)

// UserProfile is the server-defined user record, kept verbatim.
type UserProfile = json.RawMessage

// TokenPair is the token block returned by register and login.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Complete reports whether both tokens are present.
func (tp *TokenPair) Complete() bool {
	return tp != nil && tp.Access != "" && tp.Refresh != ""
}

// Credential is the authenticated session: both tokens plus the user they belong to.
type Credential struct {
	AccessToken  string
	RefreshToken string
	User         UserProfile
}

func (c Credential) slots() map[Slot]string {
	// An empty user is written too, so a previous session's user never survives.
	return map[Slot]string{
		SlotAccessToken:  c.AccessToken,
		SlotRefreshToken: c.RefreshToken,
		SlotUser:         string(c.User),
	}
}

// AuthResponse is the body of auth/register and auth/login.
type AuthResponse struct {
	User    UserProfile `json:"user,omitempty"`
	Tokens  *TokenPair  `json:"tokens,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ProfileResponse is the body of the profile update endpoints.
type ProfileResponse struct {
	User    UserProfile `json:"user,omitempty"`
	Message string      `json:"message,omitempty"`
}

// MessageResponse is a body carrying only a status message.
type MessageResponse struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// RegisterRequest holds the registration fields. Extra is merged into the body
// for deployments that collect more than the standard fields.
type RegisterRequest struct {
	Username  string
	Email     string
	Password  string
	Password2 string
	FirstName string
	LastName  string
	Extra     map[string]any
}

func (r RegisterRequest) body() map[string]any {
	body := make(map[string]any, len(r.Extra)+6)
	for k, v := range r.Extra {
		body[k] = v
	}
	set := func(k, v string) {
		if v != "" {
			body[k] = v
		}
	}
	set("username", r.Username)
	set("email", r.Email)
	set("password", r.Password)
	set("password2", r.Password2)
	set("first_name", r.FirstName)
	set("last_name", r.LastName)
	return body
}
