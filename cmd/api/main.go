package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"umuhinzilink/internal/config"
	"umuhinzilink/internal/handler"
	"umuhinzilink/internal/infra/db"
	infraRepo "umuhinzilink/internal/infra/repository"
	"umuhinzilink/internal/logging"
	"umuhinzilink/internal/middleware"
	"umuhinzilink/internal/notify"
	"umuhinzilink/internal/proxy"
	"umuhinzilink/internal/server"
	"umuhinzilink/internal/service"
	"umuhinzilink/internal/store"
	"umuhinzilink/internal/upload"
	"umuhinzilink/internal/upstream"
	"umuhinzilink/internal/usecase"
	auth "umuhinzilink/internal/usecase/auth_usecase"

	"github.com/joho/godotenv"
)

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

func main() {
	//.envは無くてもよい
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := logging.New("umuhinzilink", cfg.LogLevel)

	//DB接続（操作ログとログイン記憶だけ）
	gormDB, err := db.Connect(cfg)
	if err != nil {
		logger.Fatalf("db connect: %v", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		logger.Fatalf("db migrate: %v", err)
	}
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	prefRepo := infraRepo.NewPreferenceGormRepository(gormDB)

	//バックエンド
	client := upstream.NewClient(cfg.UpstreamBaseURL, cfg.UpstreamTimeout, logger)
	resolver := proxy.NewResolver(client, logger)

	productSvc := service.NewProductService(client, resolver)
	orderSvc := service.NewOrderService(client)
	userSvc := service.NewUserService(client)
	supplierSvc := service.NewSupplierService(client)
	uploadSvc := service.NewUploadService(client)

	//ユーザーごとのスナップショット
	sources := service.NewStoreSources(productSvc, orderSvc, userSvc, supplierSvc, !cfg.IsProduction())
	registry := store.NewRegistry(sources, cfg.SessionIdleTTL, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go registry.RunSweeper(ctx, time.Minute)

	//在席は全セッションの会話一覧に流す
	hub := notify.NewHub(logger)
	hub.OnPresence(registry.SetOnline)
	go runEvery(ctx, time.Minute, func() {
		if n := hub.SweepHistory(cfg.SessionIdleTTL); n > 0 {
			logger.Infof("dropped notification history for %d users", n)
		}
	})
	previews := upload.NewPreviews()
	defer previews.Close()

	//ログイン先（開発時はモック）
	var authenticator service.Authenticator = service.NewAuthService(client)
	if cfg.MockAuth {
		hasher := auth.NewBcryptPasswordHasher(12)
		verifier := auth.NewBcryptPasswordVerifier()
		issuer := auth.NewJWTIssuer(cfg.JWTSecret, 15*time.Minute)
		mock, err := auth.NewMockAuthenticator(hasher, verifier, issuer, &realClock{})
		if err != nil {
			logger.Fatalf("mock auth: %v", err)
		}
		logger.Warn("MOCK_AUTH is enabled")
		authenticator = mock
	}

	policy := upload.DefaultPolicy()
	policy.MaxBytes = cfg.UploadMaxBytes
	policy.MaxPixels = cfg.UploadMaxPixels
	policy.Resize = cfg.UploadResize
	policy.MaxWidth = cfg.UploadMaxWidth
	policy.MaxHeight = cfg.UploadMaxHeight
	policy.Quality = cfg.UploadQuality

	//Usecase生成
	productActions := usecase.NewProductActions(productSvc, hub, auditRepo, logger)
	orderActions := usecase.NewOrderActions(orderSvc, hub, auditRepo, logger)
	supplierActions := usecase.NewSupplierActions(supplierSvc, productActions, hub, auditRepo, logger)
	adminActions := usecase.NewAdminActions(userSvc, hub, auditRepo, logger)
	profileActions := usecase.NewProfileActions(userSvc, hub, auditRepo, logger)
	uploadActions := usecase.NewUploadActions(uploadSvc, policy, hub, auditRepo, logger)
	authActions := usecase.NewAuthActions(authenticator, prefRepo, hub, logger)

	//Handler生成
	h := server.Handlers{
		Proxy:         handler.NewProxyHandler(resolver),
		Auth:          handler.NewAuthHandler(authActions, profileActions, registry, previews, cfg.IsProduction()),
		Products:      handler.NewProductHandler(productActions, productSvc),
		Orders:        handler.NewOrderHandler(orderActions),
		Suppliers:     handler.NewSupplierHandler(supplierActions),
		Admin:         handler.NewAdminHandler(adminActions, auditRepo, logger),
		Messages:      handler.NewMessageHandler(registry, hub),
		Uploads:       handler.NewUploadHandler(uploadActions, previews),
		Notifications: handler.NewNotificationHandler(hub, []string{cfg.FEURL}, logger),
	}

	//Server起動
	limiter := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	go limiter.RunSweeper(ctx, time.Minute, 10*time.Minute)
	e := server.New(cfg, registry, h, limiter, logger)
	if err := server.Start(ctx, e, ":"+cfg.Port, logger); err != nil {
		logger.Errorf("server: %v", err)
	}
}

func runEvery(ctx context.Context, every time.Duration, fn func()) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}
