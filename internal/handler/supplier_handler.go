package handler

import (
	"net/http"

	"umuhinzilink/internal/domain/model"
	"umuhinzilink/internal/middleware"
	"umuhinzilink/internal/navigation"
	"umuhinzilink/internal/service"
	"umuhinzilink/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /api/suppliers
type SupplierHandler struct {
	actions *usecase.SupplierActions
}

// DI
func NewSupplierHandler(actions *usecase.SupplierActions) *SupplierHandler {
	return &SupplierHandler{actions: actions}
}

func (h *SupplierHandler) RegisterRoutes(g *echo.Group, session echo.MiddlewareFunc) {
	view := middleware.RoleGuard(navigation.RolesFor(navigation.SectionSuppliers)...)
	self := middleware.RoleGuard(model.RoleSupplier)

	g.GET("/suppliers", h.list, view, session)
	g.POST("/suppliers/refresh", h.refresh, view, session)
	g.GET("/suppliers/profile", h.profile, self, session)
	g.PUT("/suppliers/profile", h.updateProfile, self, session)
}

func (h *SupplierHandler) list(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	if wantsRefresh(c) {
		h.actions.Refresh(c.Request().Context(), s)
	}
	return c.JSON(http.StatusOK, viewOf(s.Suppliers, h.actions.Loading(s.Principal.UserID)))
}

func (h *SupplierHandler) refresh(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	return writeResult(c, http.StatusOK, h.actions.Refresh(c.Request().Context(), s))
}

func (h *SupplierHandler) profile(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	return writeResult(c, http.StatusOK, h.actions.Profile(c.Request().Context(), s))
}

func (h *SupplierHandler) updateProfile(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	var req service.SupplierProfileRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, err)
	}
	return writeResult(c, http.StatusOK, h.actions.UpdateProfile(c.Request().Context(), s, req))
}
