package webserver

import (
	"context"
	"net/http"
	"os"
	"path/filepath"

	"github.com/bwmarrin/snowflake"
	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Config describes the HTTP surface.
type Config struct {
	Listen    string
	StaticDir string
}

// Server wraps the echo instance with its lifecycle.
type Server struct {
	cfg  Config
	echo *echo.Echo
}

// New builds the echo server with the standard middleware chain:
// recover, allow-all CORS, snowflake request IDs and zap request
// logging. When StaticDir exists it is mounted at /static with its
// index.html served at /.
func New(cfg Config) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = serializer{}
	e.Validator = &payloadValidator{validate: validator.New()}

	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	}))

	node, err := snowflake.NewNode(1)
	if err == nil {
		e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
			Generator: func() string { return node.Generate().String() },
		}))
	} else {
		zap.L().Warn("webserver: snowflake node init failed, using default request ids", zap.Error(err))
		e.Use(middleware.RequestID())
	}

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			zap.L().Info("http request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
			return nil
		},
	}))

	if cfg.StaticDir != "" {
		if _, err := os.Stat(cfg.StaticDir); err == nil {
			e.Static("/static", cfg.StaticDir)
			e.File("/", filepath.Join(cfg.StaticDir, "index.html"))
		}
	}

	return &Server{cfg: cfg, echo: e}
}

// Echo exposes the underlying echo instance for route registration.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	zap.L().Info("webserver listening", zap.String("addr", s.cfg.Listen))
	return s.echo.Start(s.cfg.Listen)
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// serializer is echo's JSON codec backed by jsoniter.
type serializer struct{}

func (serializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := json.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (serializer) Deserialize(c echo.Context, i interface{}) error {
	if err := json.NewDecoder(c.Request().Body).Decode(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	}
	return nil
}

type payloadValidator struct {
	validate *validator.Validate
}

func (v *payloadValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}
