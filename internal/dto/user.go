package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/groupchat/internal/models"
)

// isoMillis формат toISOString() из JS
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

func FormatTime(t time.Time) string {
	return t.UTC().Format(isoMillis)
}

type UserView struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
}

func NewUserView(u *models.User) UserView {
	return UserView{
		ID:        u.ID,
		Username:  u.Username,
		AvatarURL: u.AvatarURL,
	}
}

// ProfileView данные текущего пользователя
type ProfileView struct {
	UserView
	Email      string `json:"email"`
	CreatedAt  string `json:"createdAt"`
	LastSeenAt string `json:"lastSeenAt"`
}

func NewProfileView(u *models.User) ProfileView {
	return ProfileView{
		UserView:   NewUserView(u),
		Email:      u.Email,
		CreatedAt:  FormatTime(u.CreatedAt),
		LastSeenAt: FormatTime(u.LastSeenAt),
	}
}
