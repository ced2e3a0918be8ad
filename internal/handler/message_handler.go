package handler

import (
	"errors"
	"net/http"
	"time"

	"umuhinzilink/internal/middleware"
	"umuhinzilink/internal/navigation"
	"umuhinzilink/internal/notify"
	"umuhinzilink/internal/store"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type sendMessageRequest struct {
	Content string `json:"content"`
}

type conversationsResponse struct {
	Conversations interface{} `json:"conversations"`
	UnreadTotal   int         `json:"unreadTotal"`
	Online        []string    `json:"online"`
}

// /api/messages
type MessageHandler struct {
	registry *store.Registry
	notifier notify.Notifier
}

func NewMessageHandler(registry *store.Registry, notifier notify.Notifier) *MessageHandler {
	return &MessageHandler{registry: registry, notifier: notifier}
}

func (h *MessageHandler) RegisterRoutes(g *echo.Group, session echo.MiddlewareFunc) {
	view := middleware.RoleGuard(navigation.RolesFor(navigation.SectionMessages)...)

	g.GET("/messages", h.conversations, view, session)
	g.GET("/messages/:id", h.messages, view, session)
	g.POST("/messages/:id", h.send, view, session)
	g.POST("/messages/:id/read", h.markRead, view, session)
}

func (h *MessageHandler) conversations(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, conversationsResponse{
		Conversations: s.Messages.Conversations(),
		UnreadTotal:   s.Messages.UnreadTotal(),
		Online:        s.Messages.Online(),
	})
}

func (h *MessageHandler) messages(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	msgs, err := s.Messages.Messages(c.Param("id"))
	if err != nil {
		return messageError(c, err)
	}
	return c.JSON(http.StatusOK, msgs)
}

func (h *MessageHandler) send(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	var req sendMessageRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, err)
	}
	msg, err := s.Messages.Send(c.Param("id"), uuid.NewString(), req.Content, time.Now())
	if err != nil {
		return messageError(c, err)
	}
	// 相手がセッションを持っていれば届けてトーストを出す
	if to, ok := s.Messages.Participant(msg.ConversationID); ok && h.registry.Deliver(to.ID, msg) {
		h.notifier.Notify(to.ID, notify.Info("New message", msg.Content))
	}
	return c.JSON(http.StatusCreated, msg)
}

func (h *MessageHandler) markRead(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := s.Messages.MarkRead(c.Param("id")); err != nil {
		return messageError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func messageError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, store.ErrConversationNotFound):
		return c.JSON(http.StatusNotFound, errorJSON("conversation not found"))
	case errors.Is(err, store.ErrEmptyMessage):
		return c.JSON(http.StatusBadRequest, errorJSON("message is empty"))
	}
	return c.JSON(http.StatusInternalServerError, errorJSON("internal error"))
}
