package middleware

import (
	"net/http"

	"umuhinzilink/internal/store"

	"github.com/labstack/echo/v4"
)

// 呼び出し元のセッションを開いてcontextに入れる。
// 初回だけ一覧の取得が走る。ロールが変わっていれば作り直される。
func SessionLoader(reg *store.Registry) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			s := reg.Open(c.Request().Context(), p)
			c.Set(CtxSessionKey, s)

			return next(c)
		}
	}
}

func SessionFrom(c echo.Context) (*store.Session, bool) {
	s, ok := c.Get(CtxSessionKey).(*store.Session)
	return s, ok
}
