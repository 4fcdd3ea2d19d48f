package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/thereayou/groupchat/internal/dto"
	"github.com/thereayou/groupchat/internal/middleware"
	"github.com/thereayou/groupchat/internal/models"
	"github.com/thereayou/groupchat/internal/services"
)

const maxHistoryLimit = 500

type MessageHandler struct {
	messages *services.MessageService
	log      *slog.Logger
}

func NewMessageHandler(messages *services.MessageService, log *slog.Logger) *MessageHandler {
	return &MessageHandler{messages: messages, log: log}
}

// GetMessages история группы, старые сообщения первыми.
// Без limit возвращается вся история.
func (h *MessageHandler) GetMessages(c *gin.Context) {
	groupID, ok := groupIDParam(c)
	if !ok {
		return
	}

	query := services.HistoryQuery{
		GroupID: groupID,
		UserID:  middleware.CurrentUserID(c),
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		query.Limit = min(limit, maxHistoryLimit)
	}

	if raw := c.Query("before"); raw != "" {
		before, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid before"})
			return
		}
		beforeID := uint(before)
		query.BeforeID = &beforeID
	}

	messages, err := h.messages.History(c.Request.Context(), query)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, lo.Map(messages, func(m models.Message, _ int) dto.MessageView {
		return dto.NewMessageView(&m)
	}))
}

// SendMessage сохраняет сообщение и рассылает его в комнату группы
func (h *MessageHandler) SendMessage(c *gin.Context) {
	groupID, ok := groupIDParam(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	userID := middleware.CurrentUserID(c)

	// Членство проверяется до разбора тела
	if err := h.messages.Authorize(ctx, groupID, userID); err != nil {
		h.respondError(c, err)
		return
	}

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := h.messages.Send(ctx, services.SendMessageInput{
		GroupID:  groupID,
		SenderID: userID,
		Content:  *req.Content,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewCreatedMessageView(message))
}

func (h *MessageHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Not a member of this group"})
	default:
		h.log.Error("message request failed", "path", c.FullPath(), "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
