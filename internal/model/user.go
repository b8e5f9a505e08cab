package model

// User is a registered account in the user directory
type User struct {
	Username     string `db:"username" json:"username"`
	PasswordHash string `db:"password" json:"-"`
	Nickname     string `db:"nickname" json:"nickname"`
	Avatar       string `db:"avatar" json:"avatar"`
}

// Identity returns the display identity of the user
func (u User) Identity() Identity {
	return Identity{DisplayName: u.Nickname, AvatarURL: u.Avatar}
}
