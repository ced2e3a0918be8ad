package server

import (
	"net/http"

	"umuhinzilink/internal/handler"

	"github.com/labstack/echo/v4"
)

// Handlersはルーティングに載せるハンドラ一式
type Handlers struct {
	Proxy         *handler.ProxyHandler
	Auth          *handler.AuthHandler
	Products      *handler.ProductHandler
	Orders        *handler.OrderHandler
	Suppliers     *handler.SupplierHandler
	Admin         *handler.AdminHandler
	Messages      *handler.MessageHandler
	Uploads       *handler.UploadHandler
	Notifications *handler.NotificationHandler
}

// RegisterRoutesはルートを登録する。
// authはJWT検証、sessionはスナップショットの読み込み。
func RegisterRoutes(e *echo.Echo, h Handlers, auth echo.MiddlewareFunc, session echo.MiddlewareFunc) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	//中継は専用のCORS
	h.Proxy.RegisterRoutes(e)

	//認証不要
	h.Auth.RegisterPublicRoutes(e)

	api := e.Group("/api", auth)
	h.Auth.RegisterRoutes(api, session)
	h.Products.RegisterRoutes(api, session)
	h.Orders.RegisterRoutes(api, session)
	h.Suppliers.RegisterRoutes(api, session)
	h.Admin.RegisterRoutes(api, session)
	h.Messages.RegisterRoutes(api, session)
	h.Uploads.RegisterRoutes(api)
	h.Notifications.RegisterRoutes(api)
}
