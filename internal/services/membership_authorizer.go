package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/thereayou/groupchat/internal/websocket"
)

// MembershipAuthorizer разрешает joinRoom только участникам группы
type MembershipAuthorizer struct {
	members MembershipValidator
}

func NewMembershipAuthorizer(members MembershipValidator) *MembershipAuthorizer {
	return &MembershipAuthorizer{members: members}
}

func (a *MembershipAuthorizer) CanJoin(ctx context.Context, userID uuid.UUID, roomID websocket.RoomID) (bool, error) {
	return a.members.IsGroupMember(ctx, uint(roomID), userID)
}
