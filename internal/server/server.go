package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"umuhinzilink/internal/config"
	"umuhinzilink/internal/middleware"
	"umuhinzilink/internal/store"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
)

const proxyPrefix = "/api/farmers/products"

// Newはミドルウェアとルートを載せたechoを返す。limiterがnilならcfgから作る。
func New(cfg config.Config, reg *store.Registry, h Handlers, limiter *middleware.RateLimiter, logger *log.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger = logger

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			if v.Error != nil {
				logger.Warnj(log.JSON{"id": v.RequestID, "method": v.Method, "uri": v.URI, "status": v.Status, "latency": v.Latency.String(), "error": v.Error.Error()})
				return nil
			}
			logger.Infoj(log.JSON{"id": v.RequestID, "method": v.Method, "uri": v.URI, "status": v.Status, "latency": v.Latency.String()})
			return nil
		},
	}))

	//フロント向けCORS。中継はProxyCORSが担当
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, proxyPrefix)
		},
		AllowOrigins:     []string{cfg.FEURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderAuthorization, echo.HeaderContentType, "X-Idempotency-Key"},
		AllowCredentials: true,
	}))

	if limiter == nil {
		limiter = middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	}
	e.Use(limiter.Middleware())

	RegisterRoutes(e, h, middleware.AuthJWT(cfg), middleware.SessionLoader(reg))
	return e
}

// Startはシグナルを受けるまで待ち、受けたら止める
func Start(ctx context.Context, e *echo.Echo, addr string, logger *log.Logger) error {
	e.Server.ReadHeaderTimeout = 15 * time.Second
	e.Server.IdleTimeout = 60 * time.Second

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("listening on %s", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
