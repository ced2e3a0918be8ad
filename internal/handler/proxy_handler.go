package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"umuhinzilink/internal/middleware"
	"umuhinzilink/internal/proxy"
	"umuhinzilink/internal/upstream"

	"github.com/labstack/echo/v4"
)

// 1MB
const maxProxyBody = 1 << 20

type proxyFailure struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// /api/farmers/products をバックエンドに中継する
type ProxyHandler struct {
	resolver *proxy.Resolver
}

// DI
func NewProxyHandler(resolver *proxy.Resolver) *ProxyHandler {
	return &ProxyHandler{resolver: resolver}
}

func (h *ProxyHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/farmers/products", middleware.ProxyCORS())
	g.GET("", h.list)
	g.POST("", h.create)
	g.OPTIONS("", h.preflight)
}

// ProxyCORSが200を返すのでここには来ない
func (h *ProxyHandler) preflight(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func (h *ProxyHandler) list(c echo.Context) error {
	return h.forward(c, proxy.FarmerProductsList, nil)
}

func (h *ProxyHandler) create(c echo.Context) error {
	// 1バイト多く読んで、上限を超えたら切り詰めずに断る
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxProxyBody+1))
	if err != nil {
		return c.JSON(http.StatusBadRequest, proxyFailure{Message: "Could not read request body"})
	}
	if len(body) > maxProxyBody {
		return c.JSON(http.StatusRequestEntityTooLarge, proxyFailure{Message: "Request body too large"})
	}
	return h.forward(c, proxy.FarmerProductsCreate, body)
}

func (h *ProxyHandler) forward(c echo.Context, candidates []string, body []byte) error {
	//Authorizationは必須。中身の検証はバックエンドに任せる
	authz := strings.TrimSpace(c.Request().Header.Get("Authorization"))
	if authz == "" {
		return c.JSON(http.StatusUnauthorized, proxyFailure{Message: "Authorization header is required"})
	}

	header := http.Header{}
	header.Set("Authorization", authz)
	if ct := c.Request().Header.Get("Content-Type"); ct != "" {
		header.Set("Content-Type", ct)
	}

	resp, err := h.resolver.Resolve(c.Request().Context(), c.Request().Method, candidates, body, header)
	if err != nil {
		var ex *proxy.ExhaustedError
		if errors.As(err, &ex) {
			return c.JSON(http.StatusNotFound, proxyFailure{Message: ex.Message})
		}
		return c.JSON(http.StatusBadGateway, proxyFailure{Message: upstream.NetworkErrorMessage(err)})
	}

	//受け付けた応答はそのまま返す
	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = echo.MIMEApplicationJSON
	}
	return c.Blob(resp.Status, ct, resp.Body)
}
