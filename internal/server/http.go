package server

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pabean-labs/bc20-explorer/internal/config"
	"github.com/pabean-labs/bc20-explorer/internal/server/middlewares"
	"github.com/pabean-labs/bc20-explorer/pkg/certificates"
)

const (
	ProductionServer string = "prod"
	DevServer        string = "dev"
	apiV1            string = "/api/v1"
)

// paths reachable without a token
var publicPaths = []string{apiV1 + "/health"}

type Server struct {
	srv *http.Server
}

func NewServer(cfg *config.Configuration, registerHandlerFn func(router *gin.RouterGroup)) (*Server, error) {
	gin.SetMode(gin.DebugMode)
	if cfg.Server.ServerMode == ProductionServer {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()

	srv := &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%d", cfg.Server.HTTPPort),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if cfg.Server.ServerMode == ProductionServer {
		if cfg.Server.StaticsFolder != "" {
			serveStatics(engine, cfg.Server.StaticsFolder)
		}

		tlsConfig, err := getTLSConfig(cfg.Server)
		if err != nil {
			return nil, err
		}
		srv.TLSConfig = tlsConfig
	}

	auth, err := authMiddleware(cfg.Auth)
	if err != nil {
		return nil, err
	}

	router := engine.Group(apiV1)

	router.Use(
		middlewares.Logger(),
		ginzap.RecoveryWithZap(zap.S().Desugar(), true),
		auth,
	)

	registerHandlerFn(router)

	return &Server{srv: srv}, nil
}

// Start starts the HTTP or HTTPS server based on TLS configuration.
func (r *Server) Start(ctx context.Context) error {
	if r.srv.TLSConfig != nil {
		return r.srv.ListenAndServeTLS("", "")
	}
	return r.srv.ListenAndServe()
}

func (r *Server) Stop(ctx context.Context) {
	if err := r.srv.Shutdown(ctx); err != nil {
		zap.S().Errorw("server shutdown", "error", err)
	}
}

// serveStatics serves the query builder UI and falls back to index.html for client side routes.
func serveStatics(engine *gin.Engine, folder string) {
	engine.Static("/assets", path.Join(folder, "assets"))
	engine.StaticFile("/", path.Join(folder, "index.html"))
	engine.StaticFile("/favicon.ico", path.Join(folder, "favicon.ico"))

	engine.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "API endpoint not found",
			})
			return
		}
		c.File(path.Join(folder, "index.html"))
	})
}

func authMiddleware(cfg config.Authentication) (gin.HandlerFunc, error) {
	if !cfg.Enabled {
		zap.S().Named("server").Warn("authentication disabled, every request holds every permission")
		return middlewares.GrantAll(), nil
	}

	key, err := os.ReadFile(cfg.PublicKeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read authentication public key: %w", err)
	}

	authenticator, err := middlewares.NewAuthenticator(key, publicPaths...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse authentication public key: %w", err)
	}
	return authenticator.Middleware(), nil
}

// getTLSConfig loads the configured key pair, or generates a self signed one valid for a year.
func getTLSConfig(cfg config.Server) (*tls.Config, error) {
	var (
		pair tls.Certificate
		err  error
	)

	if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		pair, err = tls.LoadX509KeyPair(cfg.TLSCertFile, cfg.TLSKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load server's certificates: %w", err)
		}
	} else {
		cert, key, err := certificates.GenerateSelfSignedCertificate([]string{"localhost", "127.0.0.1"}, time.Now().AddDate(1, 0, 0))
		if err != nil {
			return nil, fmt.Errorf("failed to generate server's certificates: %w", err)
		}
		if pair, err = certificates.KeyPair(cert, key); err != nil {
			return nil, err
		}
	}

	return &tls.Config{
		Certificates: []tls.Certificate{pair},
		MinVersion:   tls.VersionTLS12,
	}, nil
}
