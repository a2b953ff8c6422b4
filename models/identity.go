package models

// Provider identifies which external identity provider authenticated a user.
type Provider string

const (
	ProviderGoogle Provider = "google"
	ProviderGitHub Provider = "github"
)

// Valid reports whether p is one of the supported providers.
func (p Provider) Valid() bool {
	switch p {
	case ProviderGoogle, ProviderGitHub:
		return true
	}
	return false
}

// Identity is the normalized user identity shared by all providers.
// JSON field names match the credential payload handed to clients.
type Identity struct {
	ExternalID  string   `json:"id"`
	Email       string   `json:"email"`
	DisplayName string   `json:"name"`
	AvatarURL   string   `json:"picture"`
	Provider    Provider `json:"provider"`
}
