package middleware

import (
	"errors"
	"net/http"
	"strings"

	"umuhinzilink/internal/config"
	"umuhinzilink/internal/domain/model"
	"umuhinzilink/internal/upstream"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const (
	CtxPrincipalKey = "principal" // model.Principal
	CtxSessionKey   = "session"   // *store.Session
)

// bearerAuth用のJWT検証ミドルウェア。
// トークンはバックエンドが発行したもので、同じシークレットで検証する。
func AuthJWT(cfg config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rawToken, ok := bearerToken(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//JWTをパースして検証する
			token, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
				if t.Method != jwt.SigningMethodHS256 {
					return nil, errors.New("unexpected signing method")
				}
				return []byte(cfg.JWTSecret), nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || token == nil || !token.Valid {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//claimsを取り出す
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			userID, err := claims.GetSubject()
			if err != nil || strings.TrimSpace(userID) == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			rawRole, _ := claims["role"].(string)
			role, ok := model.ParseRole(rawRole)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			email, _ := claims["email"].(string)

			p := model.Principal{UserID: userID, Email: email, Role: role, Token: rawToken}
			c.Set(CtxPrincipalKey, p)

			//バックエンド呼び出しに同じトークンを使う
			req := c.Request()
			c.SetRequest(req.WithContext(upstream.WithToken(req.Context(), rawToken)))

			return next(c)
		}
	}
}

// PrincipalFromはAuthJWTが入れた呼び出し元
func PrincipalFrom(c echo.Context) (model.Principal, bool) {
	p, ok := c.Get(CtxPrincipalKey).(model.Principal)
	return p, ok
}

// Authorizationヘッダ、WebSocketのときだけ ?token= も見る
func bearerToken(c echo.Context) (string, bool) {
	authz := c.Request().Header.Get("Authorization")
	if authz == "" {
		if strings.EqualFold(c.Request().Header.Get("Upgrade"), "websocket") {
			if t := strings.TrimSpace(c.QueryParam("token")); t != "" {
				return t, true
			}
		}
		return "", false
	}

	//Bearer形式か確認してtokenを抜く
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	rawToken := strings.TrimSpace(parts[1])
	return rawToken, rawToken != ""
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}
