package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/thereayou/groupchat/internal/database"
	"github.com/thereayou/groupchat/internal/dto"
	"github.com/thereayou/groupchat/internal/middleware"
	"github.com/thereayou/groupchat/internal/models"
	"github.com/thereayou/groupchat/internal/websocket"
)

type GroupHandler struct {
	db  *database.Database
	hub *websocket.Hub
	log *slog.Logger
}

func NewGroupHandler(db *database.Database, hub *websocket.Hub, log *slog.Logger) *GroupHandler {
	return &GroupHandler{db: db, hub: hub, log: log}
}

// ListMyGroups получает список групп пользователя
func (h *GroupHandler) ListMyGroups(c *gin.Context) {
	groups, err := h.db.GetUserGroups(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		h.log.Error("list groups failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get groups"})
		return
	}

	c.JSON(http.StatusOK, lo.Map(groups, func(g models.Group, _ int) dto.GroupView {
		return dto.NewGroupView(&g)
	}))
}

// CreateGroup создает группу, создатель становится администратором
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var req dto.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group := &models.Group{
		Name:        req.Name,
		Description: req.Description,
		AvatarURL:   req.AvatarURL,
	}
	if err := h.db.CreateGroup(c.Request.Context(), group, middleware.CurrentUserID(c)); err != nil {
		h.log.Error("create group failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create group"})
		return
	}

	c.JSON(http.StatusCreated, dto.NewGroupView(group))
}

// GetGroup получает группу со списком участников
func (h *GroupHandler) GetGroup(c *gin.Context) {
	groupID, ok := groupIDParam(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	group, err := h.db.GetGroup(ctx, groupID)
	if err != nil {
		h.notFoundOrError(c, err)
		return
	}

	members, err := h.db.GetGroupMembers(ctx, groupID)
	if err != nil {
		h.log.Error("get group members failed", "group", groupID, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get group members"})
		return
	}

	online := h.hub.OnlineCount(websocket.RoomID(groupID))
	c.JSON(http.StatusOK, dto.NewGroupDetailsView(group, members, online))
}

// JoinGroup идемпотентно добавляет пользователя в группу
func (h *GroupHandler) JoinGroup(c *gin.Context) {
	groupID, ok := groupIDParam(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if _, err := h.db.GetGroup(ctx, groupID); err != nil {
		h.notFoundOrError(c, err)
		return
	}

	created, err := h.db.AddGroupMember(ctx, groupID, middleware.CurrentUserID(c), false)
	if err != nil {
		h.log.Error("join group failed", "group", groupID, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to join group"})
		return
	}

	if !created {
		c.JSON(http.StatusOK, gin.H{"message": "Already a member"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Joined group"})
}

func (h *GroupHandler) notFoundOrError(c *gin.Context, err error) {
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "group not found"})
		return
	}
	h.log.Error("get group failed", "err", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get group"})
}
