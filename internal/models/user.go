package models

// UserMetadata holds the role flags issued by the identity provider. The
// application never stores credentials; it only reads these booleans off the
// verified token.
type UserMetadata struct {
	Superadmin bool `json:"superadmin"`
	Admin      bool `json:"admin"`
	Member     bool `json:"member"`
}

// Claims is the subset of the verified ID token the handlers care about.
type Claims struct {
	Sub          string       `json:"sub"`
	Email        string       `json:"email"`
	UserMetadata UserMetadata `json:"user_metadata"`
}

// CreateUserRequest is forwarded to the identity provider's admin API.
type CreateUserRequest struct {
	Email        string       `json:"email"`
	Password     string       `json:"password"`
	UserMetadata UserMetadata `json:"user_metadata"`
}

type UpdateUserRequest struct {
	Email        string        `json:"email,omitempty"`
	Password     string        `json:"password,omitempty"`
	UserMetadata *UserMetadata `json:"user_metadata,omitempty"`
}

// ProviderUser is the identity provider's user record as returned by its
// admin API.
type ProviderUser struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	UserMetadata UserMetadata `json:"user_metadata"`
	CreatedAt    string       `json:"created_at"`
}
