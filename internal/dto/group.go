package dto

import (
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/thereayou/groupchat/internal/models"
)

type CreateGroupRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=500"`
	AvatarURL   string `json:"avatarUrl" binding:"omitempty,url"`
}

type GroupView struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
	CreatedAt   string `json:"createdAt"`
}

func NewGroupView(g *models.Group) GroupView {
	return GroupView{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		AvatarURL:   g.AvatarURL,
		CreatedAt:   FormatTime(g.CreatedAt),
	}
}

type MemberView struct {
	ID       uint      `json:"id"`
	GroupID  uint      `json:"groupId"`
	UserID   uuid.UUID `json:"userId"`
	IsAdmin  bool      `json:"isAdmin"`
	JoinedAt string    `json:"joinedAt"`
	User     UserView  `json:"user"`
}

// GroupDetailsView группа со списком участников
type GroupDetailsView struct {
	GroupView
	Members     []MemberView `json:"members"`
	OnlineCount int          `json:"onlineCount"`
}

func NewGroupDetailsView(g *models.Group, members []models.GroupMember, online int) GroupDetailsView {
	return GroupDetailsView{
		GroupView: NewGroupView(g),
		Members: lo.Map(members, func(m models.GroupMember, _ int) MemberView {
			return MemberView{
				ID:       m.ID,
				GroupID:  m.GroupID,
				UserID:   m.UserID,
				IsAdmin:  m.IsAdmin,
				JoinedAt: FormatTime(m.JoinedAt),
				User:     NewUserView(&m.User),
			}
		}),
		OnlineCount: online,
	}
}
