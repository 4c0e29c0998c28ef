package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/supporthub/support-dashboard/internal/observability"
)

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

// ServerConfig holds the settings NewApp needs.
type ServerConfig struct {
	AppName        string
	RequestTimeout time.Duration
	Logger         *zap.Logger
	Metrics        *observability.Metrics
}

// NewApp builds the fiber application with the shared JSON codec and global middlewares.
func NewApp(cfg ServerConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               cfg.AppName,
		DisableStartupMessage: true,
		JSONEncoder:           codec.Marshal,
		JSONDecoder:           codec.Unmarshal,
		ReadTimeout:           30 * time.Second,
		IdleTimeout:           120 * time.Second,
	})
	RegisterMiddlewares(app, cfg.Logger, cfg.Metrics, cfg.RequestTimeout)
	return app
}
