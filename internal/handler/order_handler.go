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

type updateStatusRequest struct {
	Status model.OrderStatus `json:"status"`
}

// /api/orders
type OrderHandler struct {
	actions *usecase.OrderActions
}

// DI
func NewOrderHandler(actions *usecase.OrderActions) *OrderHandler {
	return &OrderHandler{actions: actions}
}

func (h *OrderHandler) RegisterRoutes(g *echo.Group, session echo.MiddlewareFunc) {
	view := middleware.RoleGuard(navigation.RolesFor(navigation.SectionOrders)...)
	buyers := middleware.RoleGuard(model.RoleBuyer)
	sellers := middleware.RoleGuard(model.RoleFarmer, model.RoleSupplier, model.RoleAdmin)
	traders := middleware.RoleGuard(model.RoleFarmer, model.RoleSupplier, model.RoleBuyer, model.RoleAdmin)

	g.GET("/orders", h.list, view, session)
	g.POST("/orders/refresh", h.refresh, view, session)
	g.POST("/orders", h.create, buyers, session)
	g.PUT("/orders/:id/accept", h.accept, sellers, session)
	g.PUT("/orders/:id/cancel", h.cancel, traders, session)
	g.PUT("/orders/:id/status", h.updateStatus, sellers, session)
}

func (h *OrderHandler) list(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	if wantsRefresh(c) {
		h.actions.Refresh(c.Request().Context(), s)
	}
	return c.JSON(http.StatusOK, viewOf(s.Orders, h.actions.Loading(s.Principal.UserID)))
}

func (h *OrderHandler) refresh(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	return writeResult(c, http.StatusOK, h.actions.Refresh(c.Request().Context(), s))
}

func (h *OrderHandler) create(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	var req service.CreateOrderRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, err)
	}
	return writeResult(c, http.StatusCreated, h.actions.Create(c.Request().Context(), s, req, idemKey(c)))
}

func (h *OrderHandler) accept(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	return writeResult(c, http.StatusOK, h.actions.Accept(c.Request().Context(), s, c.Param("id")))
}

func (h *OrderHandler) cancel(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	return writeResult(c, http.StatusOK, h.actions.Cancel(c.Request().Context(), s, c.Param("id")))
}

func (h *OrderHandler) updateStatus(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	var req updateStatusRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, err)
	}
	return writeResult(c, http.StatusOK, h.actions.UpdateStatus(c.Request().Context(), s, c.Param("id"), req.Status))
}
