package toggl

import (
	"encoding/base64"
	"net/http"
)

// apiTokenPassword is the fixed password Toggl expects when the API key is
// sent as the Basic auth username.
const apiTokenPassword = "api_token"

// AuthHeader holds the headers attached to every API request.
type AuthHeader struct {
	Authorization string
	ContentType   string
}

// NewAuthHeader derives the Basic credential for apiKey.
func NewAuthHeader(apiKey string) (AuthHeader, error) {
	if apiKey == "" {
		return AuthHeader{}, &ConfigurationError{Field: "api key"}
	}
	token := base64.StdEncoding.EncodeToString([]byte(apiKey + ":" + apiTokenPassword))
	return AuthHeader{
		Authorization: "Basic " + token,
		ContentType:   "application/json",
	}, nil
}

// Apply sets the headers on h.
func (a AuthHeader) Apply(h http.Header) {
	h.Set("Authorization", a.Authorization)
	h.Set("Content-Type", a.ContentType)
	h.Set("Accept", "application/json")
}
