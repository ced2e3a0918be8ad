package handler

import (
	"net/http"

	"umuhinzilink/internal/middleware"
	"umuhinzilink/internal/notify"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// /api/notifications
type NotificationHandler struct {
	hub      *notify.Hub
	upgrader websocket.Upgrader
	logger   *log.Logger
}

// DI。originsが空ならOriginを問わない。
func NewNotificationHandler(hub *notify.Hub, origins []string, logger *log.Logger) *NotificationHandler {
	allowed := map[string]struct{}{}
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	return &NotificationHandler{
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || len(allowed) == 0 {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
	}
}

func (h *NotificationHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/notifications", h.recent)
	g.GET("/notifications/ws", h.stream)
}

func (h *NotificationHandler) recent(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
	}
	return c.JSON(http.StatusOK, h.hub.Recent(p.UserID))
}

// streamは接続が切れるまで戻らない
func (h *NotificationHandler) stream(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
	}
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warnf("websocket upgrade: %v", err)
		return nil
	}
	h.hub.Serve(p.UserID, conn)
	return nil
}
