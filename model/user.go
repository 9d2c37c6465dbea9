package model

// UserProfile is the public profile of the authenticated identity
type UserProfile struct {
	Login     string  `json:"login"`
	FullName  *string `json:"fullName,omitempty"`
	Email     *string `json:"email,omitempty"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
}
