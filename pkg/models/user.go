package models

// User is the public profile of a learner. Credentials never leave the auth service.
type User struct {
	ID        string  `json:"id"`
	Username  string  `json:"username"`
	FullName  *string `json:"full_name"`
	AvatarURL *string `json:"avatar_url"`
}

// DisplayName returns the full name when set, the username otherwise
func (u User) DisplayName() string {
	if u.FullName != nil && *u.FullName != "" {
		return *u.FullName
	}
	return u.Username
}
