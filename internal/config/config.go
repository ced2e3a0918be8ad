package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Configはアプリ全体の設定
type Config struct {
	Port  string // サーバーポート（8080）
	GoEnv string // dev/prod

	UpstreamBaseURL string        // バックエンドAPIのベースURL
	UpstreamTimeout time.Duration // バックエンド呼び出しのタイムアウト

	JWTSecret string // JWT署名シークレット（バックエンドと共有）
	MockAuth  bool   // 開発用のモック認証
	FEURL     string // フロントURL（CORS）

	DatabaseURL      string // DATABASE_URL があれば最優先
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     int
	PostgresSSLMode  string

	UploadMaxBytes  int64   // アップロード上限（5MB）
	UploadMaxPixels int64   // 画素数の上限（幅×高さ）
	UploadResize    bool    // 画像の縮小を行うか
	UploadMaxWidth  int     // 縮小後の最大幅
	UploadMaxHeight int     // 縮小後の最大高さ
	UploadQuality   float64 // JPEG品質（0〜1）

	RateLimitRequests int
	RateLimitWindow   time.Duration

	SessionIdleTTL time.Duration // 使われていないスナップショットの破棄
	LogLevel       string
}

// Loadは環境変数
func Load() (Config, error) {
	pgPort, err := intOr("POSTGRES_PORT", 5432)
	if err != nil {
		return Config{}, err
	}
	maxBytes, err := intOr("UPLOAD_MAX_BYTES", 5*1024*1024)
	if err != nil {
		return Config{}, err
	}
	maxPixels, err := intOr("UPLOAD_MAX_PIXELS", 40_000_000)
	if err != nil {
		return Config{}, err
	}
	maxW, err := intOr("UPLOAD_MAX_WIDTH", 1920)
	if err != nil {
		return Config{}, err
	}
	maxH, err := intOr("UPLOAD_MAX_HEIGHT", 1080)
	if err != nil {
		return Config{}, err
	}
	quality, err := floatOr("UPLOAD_QUALITY", 0.8)
	if err != nil {
		return Config{}, err
	}
	rlReq, err := intOr("RATE_LIMIT_REQUESTS", 100)
	if err != nil {
		return Config{}, err
	}
	timeout, err := durationOr("UPSTREAM_TIMEOUT", 15*time.Second)
	if err != nil {
		return Config{}, err
	}
	rlWindow, err := durationOr("RATE_LIMIT_WINDOW", time.Minute)
	if err != nil {
		return Config{}, err
	}
	idle, err := durationOr("SESSION_IDLE_TTL", 30*time.Minute)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:  getenv("PORT", "8080"),
		GoEnv: getenv("GO_ENV", "dev"),

		UpstreamBaseURL: strings.TrimRight(os.Getenv("UPSTREAM_BASE_URL"), "/"),
		UpstreamTimeout: timeout,

		JWTSecret: os.Getenv("JWT_SECRET"),
		MockAuth:  envBool("MOCK_AUTH", false),
		FEURL:     getenv("FE_URL", "http://localhost:3000"),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PostgresUser:     getenv("POSTGRES_USER", "postgres"),
		PostgresPassword: getenv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getenv("POSTGRES_DB", "umuhinzilink"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresPort:     pgPort,
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		UploadMaxBytes:  int64(maxBytes),
		UploadMaxPixels: int64(maxPixels),
		UploadResize:    envBool("UPLOAD_RESIZE", true),
		UploadMaxWidth:  maxW,
		UploadMaxHeight: maxH,
		UploadQuality:   quality,

		RateLimitRequests: rlReq,
		RateLimitWindow:   rlWindow,

		SessionIdleTTL: idle,
		LogLevel:       getenv("LOG_LEVEL", "info"),
	}

	//必須チェック
	if cfg.UpstreamBaseURL == "" {
		return Config{}, fmt.Errorf("UPSTREAM_BASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.UploadMaxBytes <= 0 {
		return Config{}, fmt.Errorf("UPLOAD_MAX_BYTES must be positive")
	}
	if cfg.UploadQuality <= 0 || cfg.UploadQuality > 1 {
		return Config{}, fmt.Errorf("UPLOAD_QUALITY must be in (0, 1]")
	}
	if cfg.MockAuth && cfg.IsProduction() {
		return Config{}, fmt.Errorf("MOCK_AUTH cannot be enabled in prod")
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.GoEnv == "prod" || c.GoEnv == "production"
}

// PostgresDSNはgorm用の接続文字列
func (c Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode,
	)
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "TRUE", "True":
		return true
	case "0", "false", "FALSE", "False":
		return false
	default:
		return def
	}
}

func intOr(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func floatOr(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return f, nil
}

// "30s" 形式、または秒数だけの指定を受け付ける
func durationOr(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be duration: %w", key, err)
	}
	return time.Duration(i) * time.Second, nil
}
