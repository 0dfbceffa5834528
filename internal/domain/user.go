package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type User struct {
	ID        string `db:"id" json:"id"`
	Email     string `db:"email" json:"email"`
	Name      string `db:"name" json:"name"`
	Hash      string `db:"password_hash" json:"-"`
	Role      string `db:"role" json:"role"`
	AvatarURL string `db:"avatar_url" json:"avatar_url,omitempty"`
}

// Avatar returns the profile image URL, or the user's initial when none is set.
func (u *User) Avatar() string {
	if u == nil {
		return ""
	}
	if u.AvatarURL != "" {
		return u.AvatarURL
	}
	src := strings.TrimSpace(u.Name)
	if src == "" {
		src = strings.TrimSpace(u.Email)
	}
	r, _ := utf8.DecodeRuneInString(src)
	if r == utf8.RuneError {
		return "?"
	}
	return string(unicode.ToUpper(r))
}
