package handler

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"time"

	"umuhinzilink/internal/middleware"
	"umuhinzilink/internal/navigation"
	"umuhinzilink/internal/service"
	"umuhinzilink/internal/store"
	"umuhinzilink/internal/upload"
	"umuhinzilink/internal/usecase"

	"github.com/labstack/echo/v4"
)

// ブラウザ単位の識別子（「ログイン情報を記憶する」に使う）
const clientKeyCookie = "client_key"

// /api/auth/login のリクエストボディ。
type loginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

type rememberedResponse struct {
	Email      string `json:"email"`
	RememberMe bool   `json:"rememberMe"`
}

type resolveResponse struct {
	Role string          `json:"role"`
	Item navigation.Item `json:"item"`
}

type AuthHandler struct {
	auth         *usecase.AuthActions
	profile      *usecase.ProfileActions
	registry     *store.Registry
	previews     *upload.Previews
	cookieSecure bool
}

// DIコンストラクタ
func NewAuthHandler(
	auth *usecase.AuthActions,
	profile *usecase.ProfileActions,
	registry *store.Registry,
	previews *upload.Previews,
	cookieSecure bool,
) *AuthHandler {
	return &AuthHandler{
		auth:         auth,
		profile:      profile,
		registry:     registry,
		previews:     previews,
		cookieSecure: cookieSecure,
	}
}

// 認証不要のルート
func (h *AuthHandler) RegisterPublicRoutes(e *echo.Echo) {
	e.POST("/api/auth/login", h.login)
	e.GET("/api/auth/remembered", h.remembered)
	e.GET("/api/navigation/resolve", h.resolve)
}

// gはAuthJWT済みのグループ
func (h *AuthHandler) RegisterRoutes(g *echo.Group, session echo.MiddlewareFunc) {
	g.POST("/auth/logout", h.logout)
	g.GET("/auth/me", h.me, session)
	g.PUT("/auth/profile", h.updateProfile, session)
	g.GET("/navigation/menu", h.menu)
}

// LoginはPOST /api/auth/login のハンドラ。
func (h *AuthHandler) login(c echo.Context) error {
	var req loginRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, err)
	}

	key, err := h.clientKey(c)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorJSON("internal error"))
	}

	res := h.auth.Login(c.Request().Context(), usecase.LoginInput{
		Email:      req.Email,
		Password:   req.Password,
		RememberMe: req.RememberMe,
		ClientKey:  key,
	})
	return writeResult(c, http.StatusOK, res)
}

func (h *AuthHandler) remembered(c echo.Context) error {
	var key string
	if ck, err := c.Cookie(clientKeyCookie); err == nil {
		key = ck.Value
	}
	pref := h.auth.Remembered(c.Request().Context(), key)
	return c.JSON(http.StatusOK, rememberedResponse{Email: pref.RememberedEmail, RememberMe: pref.RememberMe})
}

// ログアウトでスナップショットとプレビューを捨てる
func (h *AuthHandler) logout(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
	}
	h.registry.Close(p.UserID)
	h.previews.RevokeOwner(p.UserID)
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) me(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	return writeResult(c, http.StatusOK, h.profile.Me(c.Request().Context(), s))
}

func (h *AuthHandler) updateProfile(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	var req service.ProfileRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, err)
	}
	return writeResult(c, http.StatusOK, h.profile.UpdateProfile(c.Request().Context(), s, req))
}

func (h *AuthHandler) menu(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
	}
	return c.JSON(http.StatusOK, navigation.MenuFor(p.Role))
}

// 古いページのパスを正規のパスに読み替える
func (h *AuthHandler) resolve(c echo.Context) error {
	role, item, ok := navigation.Resolve(c.QueryParam("path"))
	if !ok {
		return c.JSON(http.StatusNotFound, errorJSON("not found"))
	}
	return c.JSON(http.StatusOK, resolveResponse{Role: string(role), Item: item})
}

// client_key Cookieを読み、なければ作る
func (h *AuthHandler) clientKey(c echo.Context) (string, error) {
	if ck, err := c.Cookie(clientKeyCookie); err == nil && ck.Value != "" && len(ck.Value) <= 64 {
		return ck.Value, nil
	}
	v, err := generateSecureToken(32)
	if err != nil {
		return "", err
	}
	c.SetCookie(&http.Cookie{
		Name:     clientKeyCookie,
		Value:    v,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(365 * 24 * time.Hour),
	})
	return v, nil
}

// ランダム文字列を作る。
func generateSecureToken(bytesLen int) (string, error) {
	if bytesLen <= 0 {
		bytesLen = 32
	}

	b := make([]byte, bytesLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}
