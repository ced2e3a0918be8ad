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

// /api/products
type ProductHandler struct {
	actions *usecase.ProductActions
	svc     *service.ProductService
}

// DI
func NewProductHandler(actions *usecase.ProductActions, svc *service.ProductService) *ProductHandler {
	return &ProductHandler{actions: actions, svc: svc}
}

// gはAuthJWT済みのグループ
func (h *ProductHandler) RegisterRoutes(g *echo.Group, session echo.MiddlewareFunc) {
	view := middleware.RoleGuard(navigation.RolesFor(navigation.SectionProducts)...)
	sellers := middleware.RoleGuard(model.RoleFarmer, model.RoleSupplier)
	removers := middleware.RoleGuard(model.RoleFarmer, model.RoleSupplier, model.RoleAdmin)

	g.GET("/products", h.list, view, session)
	g.GET("/products/:id", h.detail, view, session)
	g.POST("/products/refresh", h.refresh, view, session)
	g.POST("/products", h.create, sellers, session)
	g.PUT("/products/:id", h.update, sellers, session)
	g.DELETE("/products/:id", h.delete, removers, session)
}

func (h *ProductHandler) list(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	if wantsRefresh(c) {
		h.actions.Refresh(c.Request().Context(), s)
	}
	return c.JSON(http.StatusOK, viewOf(s.Products, h.actions.Loading(s.Principal.UserID)))
}

// スナップショットになければバックエンドに聞く
func (h *ProductHandler) detail(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	id := c.Param("id")
	if s.Products != nil {
		if p, ok := s.Products.Get(id); ok {
			return c.JSON(http.StatusOK, p)
		}
	}
	env := h.svc.Get(c.Request().Context(), id)
	if !env.Success {
		status := env.Status
		if status < 400 {
			status = http.StatusBadGateway
		}
		return c.JSON(status, errorJSON(env.Message))
	}
	return c.JSON(http.StatusOK, env.Data)
}

func (h *ProductHandler) refresh(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	return writeResult(c, http.StatusOK, h.actions.Refresh(c.Request().Context(), s))
}

func (h *ProductHandler) create(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	var req service.ProductRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, err)
	}
	return writeResult(c, http.StatusCreated, h.actions.Create(c.Request().Context(), s, req, idemKey(c)))
}

func (h *ProductHandler) update(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	var req service.ProductRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, err)
	}
	return writeResult(c, http.StatusOK, h.actions.Update(c.Request().Context(), s, c.Param("id"), req))
}

func (h *ProductHandler) delete(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	return writeResult(c, http.StatusOK, h.actions.Delete(c.Request().Context(), s, c.Param("id")))
}
