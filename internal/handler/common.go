package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"umuhinzilink/internal/middleware"
	"umuhinzilink/internal/store"
	"umuhinzilink/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 同じ送信を1回にまとめるためのヘッダ
const IdempotencyHeader = "X-Idempotency-Key"

type ErrorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) ErrorResponse {
	return ErrorResponse{Error: msg}
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// writeResultは成功ならstatus、失敗ならResultのstatusでそのまま返す
func writeResult[T any](c echo.Context, status int, r usecase.Result[T]) error {
	if r.OK {
		return c.JSON(status, r)
	}
	code := r.Status
	if code < 400 {
		code = http.StatusBadGateway
	}
	return c.JSON(code, r)
}

// 一覧＋読み込み中フラグ＋エラー枠。
// Busyはそのユーザーの追加・更新・削除が進行中か。
type collectionView[T any] struct {
	Items   []T    `json:"items"`
	Loading bool   `json:"loading"`
	Busy    bool   `json:"busy"`
	Error   string `json:"error,omitempty"`
}

func viewOf[T store.Keyed](p *store.Provider[T], busy bool) collectionView[T] {
	if p == nil {
		return collectionView[T]{Items: []T{}, Busy: busy}
	}
	v := collectionView[T]{Items: p.Items(), Loading: p.Loading(), Busy: busy}
	if err := p.Err(); err != nil {
		v.Error = err.Error()
		var le *store.LoadError
		if errors.As(err, &le) {
			v.Error = le.Message
		}
	}
	return v
}

func sessionFrom(c echo.Context) (*store.Session, error) {
	s, ok := middleware.SessionFrom(c)
	if !ok {
		return nil, usecase.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return s, nil
}

// リクエストボディのJSONを読み取り。
func decodeJSON(c echo.Context, dst interface{}) error {
	dec := json.NewDecoder(c.Request().Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return usecase.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return nil
}

func idemKey(c echo.Context) string {
	k := strings.TrimSpace(c.Request().Header.Get(IdempotencyHeader))
	if len(k) > 255 {
		return ""
	}
	return k
}

// refresh=1 なら取り直してから返す
func wantsRefresh(c echo.Context) bool {
	v := c.QueryParam("refresh")
	return v == "1" || v == "true"
}
