package server_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pabean-labs/bc20-explorer/internal/config"
	"github.com/pabean-labs/bc20-explorer/internal/server"
	"github.com/pabean-labs/bc20-explorer/internal/server/middlewares"
)

var _ = Describe("HTTP Server", func() {
	var (
		cfg               *config.Configuration
		registerHandlerFn func(router *gin.RouterGroup)
		tempDir           string
		srv               *server.Server
	)

	BeforeEach(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "server-test")
		Expect(err).ToNot(HaveOccurred())

		indexPath := filepath.Join(tempDir, "index.html")
		err = os.WriteFile(indexPath, []byte("<html></html>"), 0o644)
		Expect(err).ToNot(HaveOccurred())

		faviconPath := filepath.Join(tempDir, "favicon.ico")
		err = os.WriteFile(faviconPath, []byte(""), 0o644)
		Expect(err).ToNot(HaveOccurred())

		registerHandlerFn = func(router *gin.RouterGroup) {
			router.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{"status": "ok"})
			})
		}
	})

	AfterEach(func() {
		os.RemoveAll(tempDir)
	})

	Context("dev server mode", func() {
		BeforeEach(func() {
			cfg = &config.Configuration{
				Server: config.Server{
					ServerMode:    server.DevServer,
					HTTPPort:      18080,
					StaticsFolder: tempDir,
				},
			}
		})

		AfterEach(func() {
			if srv != nil {
				srv.Stop(context.TODO())
			}
		})

		It("serves over HTTP", func() {
			var err error
			srv, err = server.NewServer(cfg, registerHandlerFn)
			Expect(err).ToNot(HaveOccurred())

			go func() {
				_ = srv.Start(context.TODO())
			}()
			time.Sleep(100 * time.Millisecond)

			resp, err := http.Get(fmt.Sprintf("http://localhost:%d/api/v1/health", cfg.Server.HTTPPort))
			Expect(err).ToNot(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(200))
			resp.Body.Close()
		})
	})

	Context("production server mode", func() {
		BeforeEach(func() {
			cfg = &config.Configuration{
				Server: config.Server{
					ServerMode:    server.ProductionServer,
					HTTPPort:      18443,
					StaticsFolder: tempDir,
				},
			}
		})

		AfterEach(func() {
			if srv != nil {
				srv.Stop(context.TODO())
			}
		})

		It("serves over HTTPS with TLS", func() {
			var err error
			srv, err = server.NewServer(cfg, registerHandlerFn)
			Expect(err).ToNot(HaveOccurred())

			go func() {
				_ = srv.Start(context.TODO())
			}()
			time.Sleep(100 * time.Millisecond)

			client := &http.Client{
				Transport: &http.Transport{
					TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
				},
			}

			resp, err := client.Get(fmt.Sprintf("https://localhost:%d/api/v1/health", cfg.Server.HTTPPort))
			Expect(err).ToNot(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(200))
			resp.Body.Close()
		})

		// Given a production server with static files
		// When we request the root path
		// Then it should serve the index.html
		It("serves static index.html at root", func() {
			var err error
			srv, err = server.NewServer(cfg, registerHandlerFn)
			Expect(err).ToNot(HaveOccurred())

			go func() {
				_ = srv.Start(context.TODO())
			}()
			time.Sleep(100 * time.Millisecond)

			client := &http.Client{
				Transport: &http.Transport{
					TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
				},
			}

			resp, err := client.Get(fmt.Sprintf("https://localhost:%d/", cfg.Server.HTTPPort))
			Expect(err).ToNot(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(200))
			resp.Body.Close()
		})

		// Given a production server
		// When we request a non-existent API route
		// Then it should return 404 with a JSON error
		It("returns 404 JSON for unknown API routes", func() {
			var err error
			srv, err = server.NewServer(cfg, registerHandlerFn)
			Expect(err).ToNot(HaveOccurred())

			go func() {
				_ = srv.Start(context.TODO())
			}()
			time.Sleep(100 * time.Millisecond)

			client := &http.Client{
				Transport: &http.Transport{
					TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
				},
			}

			resp, err := client.Get(fmt.Sprintf("https://localhost:%d/api/v1/nonexistent", cfg.Server.HTTPPort))
			Expect(err).ToNot(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(404))
			resp.Body.Close()
		})

		// Given a production server
		// When we request a non-existent non-API route
		// Then it should serve index.html (SPA fallback)
		It("serves index.html for non-API routes (SPA fallback)", func() {
			var err error
			srv, err = server.NewServer(cfg, registerHandlerFn)
			Expect(err).ToNot(HaveOccurred())

			go func() {
				_ = srv.Start(context.TODO())
			}()
			time.Sleep(100 * time.Millisecond)

			client := &http.Client{
				Transport: &http.Transport{
					TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
				},
			}

			resp, err := client.Get(fmt.Sprintf("https://localhost:%d/some/spa/route", cfg.Server.HTTPPort))
			Expect(err).ToNot(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(200))
			resp.Body.Close()
		})

		// Given a running production server
		// When we call Stop
		// Then subsequent requests should fail
		It("stops accepting requests after Stop", func() {
			var err error
			srv, err = server.NewServer(cfg, registerHandlerFn)
			Expect(err).ToNot(HaveOccurred())

			go func() {
				_ = srv.Start(context.TODO())
			}()
			time.Sleep(100 * time.Millisecond)

			// Act
			srv.Stop(context.TODO())
			srv = nil // prevent double stop in AfterEach

			// Assert
			client := &http.Client{
				Transport: &http.Transport{
					TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
				},
			}
			_, err = client.Get(fmt.Sprintf("https://localhost:%d/api/v1/health", cfg.Server.HTTPPort))
			Expect(err).To(HaveOccurred())
		})
	})
	Context("authentication enabled", func() {
		var signingKey *rsa.PrivateKey

		BeforeEach(func() {
			var err error
			signingKey, err = rsa.GenerateKey(rand.Reader, 2048)
			Expect(err).ToNot(HaveOccurred())

			der, err := x509.MarshalPKIXPublicKey(&signingKey.PublicKey)
			Expect(err).ToNot(HaveOccurred())
			keyPath := filepath.Join(tempDir, "public.pem")
			err = os.WriteFile(keyPath, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), 0o600)
			Expect(err).ToNot(HaveOccurred())

			registerHandlerFn = func(router *gin.RouterGroup) {
				router.GET("/health", func(c *gin.Context) {
					c.JSON(200, gin.H{"status": "ok"})
				})
				router.GET("/declarations", func(c *gin.Context) {
					if !middlewares.HasPermission(c, middlewares.PermissionDeclarationsView) {
						c.JSON(403, gin.H{"error": "forbidden"})
						return
					}
					c.JSON(200, gin.H{"data": []any{}})
				})
			}

			cfg = &config.Configuration{
				Server: config.Server{
					ServerMode: server.DevServer,
					HTTPPort:   18081,
				},
				Auth: config.Authentication{
					Enabled:       true,
					PublicKeyFile: keyPath,
				},
			}
		})

		AfterEach(func() {
			if srv != nil {
				srv.Stop(context.TODO())
			}
		})

		get := func(path, bearer string) int {
			req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("http://localhost:%d%s", cfg.Server.HTTPPort, path), nil)
			Expect(err).ToNot(HaveOccurred())
			if bearer != "" {
				req.Header.Set("Authorization", "Bearer "+bearer)
			}
			resp, err := http.DefaultClient.Do(req)
			Expect(err).ToNot(HaveOccurred())
			defer resp.Body.Close()
			return resp.StatusCode
		}

		It("guards the API with RS256 tokens", func() {
			var err error
			srv, err = server.NewServer(cfg, registerHandlerFn)
			Expect(err).ToNot(HaveOccurred())

			go func() {
				_ = srv.Start(context.TODO())
			}()
			time.Sleep(100 * time.Millisecond)

			signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, middlewares.Claims{
				Permissions: []string{middlewares.PermissionDeclarationsView},
			}).SignedString(signingKey)
			Expect(err).ToNot(HaveOccurred())

			Expect(get("/api/v1/health", "")).To(Equal(200))
			Expect(get("/api/v1/declarations", "")).To(Equal(401))
			Expect(get("/api/v1/declarations", signed)).To(Equal(200))
		})

		It("fails when the public key cannot be read", func() {
			cfg.Auth.PublicKeyFile = filepath.Join(tempDir, "missing.pem")

			_, err := server.NewServer(cfg, registerHandlerFn)
			Expect(err).To(HaveOccurred())
		})
	})
})
