package handler

import (
	"errors"
	"io"
	"net/http"

	"umuhinzilink/internal/middleware"
	"umuhinzilink/internal/upload"
	"umuhinzilink/internal/usecase"

	"github.com/labstack/echo/v4"
)

type previewResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// /api/uploads
type UploadHandler struct {
	actions  *usecase.UploadActions
	previews *upload.Previews
}

// DI
func NewUploadHandler(actions *usecase.UploadActions, previews *upload.Previews) *UploadHandler {
	return &UploadHandler{actions: actions, previews: previews}
}

func (h *UploadHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/uploads", h.upload)
	g.POST("/uploads/previews", h.createPreview)
	g.GET("/uploads/previews/:id", h.preview)
	g.DELETE("/uploads/previews/:id", h.revokePreview)
}

func (h *UploadHandler) upload(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
	}
	f, err := h.readFile(c)
	if err != nil {
		return writeError(c, err)
	}
	return writeResult(c, http.StatusCreated, h.actions.Upload(c.Request().Context(), p, f, idemKey(c)))
}

// 確定前のプレビュー。検査に通ったものだけ置く。
func (h *UploadHandler) createPreview(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
	}
	f, err := h.readFile(c)
	if err != nil {
		return writeError(c, err)
	}
	ct, err := h.actions.Policy().Validate(f)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON(upload.Message(err)))
	}
	id, err := h.previews.Create(p.UserID, ct, f.Data)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, errorJSON("previews unavailable"))
	}
	return c.JSON(http.StatusCreated, previewResponse{ID: id, URL: "/api/uploads/previews/" + id})
}

func (h *UploadHandler) preview(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
	}
	pv, err := h.previews.Get(p.UserID, c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, errorJSON("not found"))
	}
	c.Response().Header().Set("Cache-Control", "no-store")
	return c.Blob(http.StatusOK, pv.ContentType, pv.Data)
}

func (h *UploadHandler) revokePreview(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
	}
	if !h.previews.Revoke(p.UserID, c.Param("id")) {
		return c.JSON(http.StatusNotFound, errorJSON("not found"))
	}
	return c.NoContent(http.StatusNoContent)
}

// readFileは上限+1バイトまで読む。超過の判定はPolicyに任せる。
func (h *UploadHandler) readFile(c echo.Context) (upload.File, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return upload.File{}, usecase.NewHTTPError(http.StatusBadRequest, "file is required")
		}
		return upload.File{}, usecase.NewHTTPError(http.StatusBadRequest, "invalid multipart form")
	}
	src, err := fh.Open()
	if err != nil {
		return upload.File{}, usecase.NewHTTPError(http.StatusBadRequest, "invalid file")
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, h.actions.Policy().MaxBytes+1))
	if err != nil {
		return upload.File{}, usecase.NewHTTPError(http.StatusBadRequest, "invalid file")
	}
	return upload.File{Name: fh.Filename, ContentType: fh.Header.Get("Content-Type"), Data: data}, nil
}
