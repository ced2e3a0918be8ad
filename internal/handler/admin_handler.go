package handler

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"
	"time"

	"umuhinzilink/internal/domain/model"
	"umuhinzilink/internal/middleware"
	"umuhinzilink/internal/navigation"
	"umuhinzilink/internal/report"
	repo "umuhinzilink/internal/repository"
	"umuhinzilink/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// /api/admin 配下（管理者・行政）
type AdminHandler struct {
	actions   *usecase.AdminActions
	auditRepo repo.AuditLogRepository
	logger    *log.Logger
}

// DI
func NewAdminHandler(actions *usecase.AdminActions, auditRepo repo.AuditLogRepository, logger *log.Logger) *AdminHandler {
	return &AdminHandler{actions: actions, auditRepo: auditRepo, logger: logger}
}

func (h *AdminHandler) RegisterRoutes(g *echo.Group, session echo.MiddlewareFunc) {
	users := middleware.RoleGuard(navigation.RolesFor(navigation.SectionUsers)...)
	reports := middleware.RoleGuard(navigation.RolesFor(navigation.SectionReports)...)
	audit := middleware.RoleGuard(navigation.RolesFor(navigation.SectionAudit)...)

	a := g.Group("/admin")
	a.GET("/dashboard", h.dashboard, reports, session)
	a.POST("/refresh", h.refresh, reports, session)
	a.GET("/users", h.listUsers, users, session)
	a.DELETE("/users/:id", h.deleteUser, users, session)
	a.GET("/reports/:kind", h.export, reports, session)
	a.GET("/audit-logs", h.auditLogs, audit)
}

func (h *AdminHandler) dashboard(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, usecase.Snapshot(s))
}

func (h *AdminHandler) refresh(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	return writeResult(c, http.StatusOK, h.actions.RefreshAll(c.Request().Context(), s))
}

func (h *AdminHandler) listUsers(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, viewOf(s.Users, h.actions.Loading(s.Principal.UserID)))
}

func (h *AdminHandler) deleteUser(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	return writeResult(c, http.StatusOK, h.actions.DeleteUser(c.Request().Context(), s, c.Param("id")))
}

// /admin/reports/{products|orders}?format=xlsx|csv
func (h *AdminHandler) export(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	snap := usecase.Snapshot(s)
	format := strings.ToLower(c.QueryParam("format"))
	if format == "" {
		format = "xlsx"
	}

	var buf bytes.Buffer
	kind := c.Param("kind")
	switch {
	case kind == "products" && format == "xlsx":
		err = report.ProductsXLSX(&buf, snap.Products)
	case kind == "products" && format == "csv":
		err = report.ProductsCSV(&buf, snap.Products)
	case kind == "orders" && format == "xlsx":
		err = report.OrdersXLSX(&buf, snap.Orders)
	case kind == "orders" && format == "csv":
		err = report.OrdersCSV(&buf, snap.Orders)
	default:
		return c.JSON(http.StatusBadRequest, errorJSON("unknown report"))
	}
	if err != nil {
		h.logger.Errorf("export %s: %v", kind, err)
		return c.JSON(http.StatusInternalServerError, errorJSON("internal error"))
	}

	ct := report.XLSXContentType
	if format == "csv" {
		ct = report.CSVContentType
	}
	name := kind + "-" + time.Now().Format("20060102") + "." + format
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+name)
	return c.Blob(http.StatusOK, ct, buf.Bytes())
}

func (h *AdminHandler) auditLogs(c echo.Context) error {
	var f repo.AuditLogFilter
	if v := c.QueryParam("actor"); v != "" {
		f.ActorUserID = &v
	}
	if v := c.QueryParam("action"); v != "" {
		a := model.AuditAction(strings.ToUpper(v))
		f.Action = &a
	}
	if v := c.QueryParam("resource_type"); v != "" {
		rt := model.AuditResourceType(strings.ToLower(v))
		f.ResourceType = &rt
	}
	if v := c.QueryParam("resource_id"); v != "" {
		f.ResourceID = &v
	}
	if v := c.QueryParam("outcome"); v != "" {
		o := model.AuditOutcome(strings.ToUpper(v))
		f.Outcome = &o
	}
	for key, dst := range map[string]**time.Time{"from": &f.CreatedFrom, "to": &f.CreatedTo} {
		if v := c.QueryParam(key); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				return c.JSON(http.StatusBadRequest, errorJSON("invalid "+key))
			}
			*dst = &t
		}
	}
	for key, dst := range map[string]*int{"limit": &f.Limit, "offset": &f.Offset} {
		if v := c.QueryParam(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return c.JSON(http.StatusBadRequest, errorJSON("invalid "+key))
			}
			*dst = n
		}
	}

	logs, err := h.auditRepo.List(c.Request().Context(), f)
	if err != nil {
		h.logger.Errorf("list audit logs: %v", err)
		return c.JSON(http.StatusInternalServerError, errorJSON("db error"))
	}
	return c.JSON(http.StatusOK, logs)
}
