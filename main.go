package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gogotex/gogotex/backend/go-attachments/handlers"
	attrepo "github.com/gogotex/gogotex/backend/go-attachments/internal/attachment/repository"
	attsvc "github.com/gogotex/gogotex/backend/go-attachments/internal/attachment/service"
	"github.com/gogotex/gogotex/backend/go-attachments/internal/config"
	"github.com/gogotex/gogotex/backend/go-attachments/internal/database"
	"github.com/gogotex/gogotex/backend/go-attachments/internal/document"
	docsvc "github.com/gogotex/gogotex/backend/go-attachments/internal/document/service"
	"github.com/gogotex/gogotex/backend/go-attachments/internal/models"
	"github.com/gogotex/gogotex/backend/go-attachments/internal/oidc"
	"github.com/gogotex/gogotex/backend/go-attachments/internal/sessions"
	"github.com/gogotex/gogotex/backend/go-attachments/internal/storage"
	"github.com/gogotex/gogotex/backend/go-attachments/internal/tokens"
	"github.com/gogotex/gogotex/backend/go-attachments/internal/users"
	"github.com/gogotex/gogotex/backend/go-attachments/pkg/logger"
	"github.com/gogotex/gogotex/backend/go-attachments/pkg/metrics"
	"github.com/gogotex/gogotex/backend/go-attachments/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

var startTime = time.Now()

func main() {
	// initialize logging (can be controlled with LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	if cfg.Server.Debug {
		logger.Init("debug")
	} else if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	logger.Infof("config loaded: keycloak=%v mongo=%v redis=%v storage=%s attachment_host=%q",
		cfg.Keycloak.URL != "", cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.Storage.Backend, cfg.Attachments.Host)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := gin.New()
	// Global middlewares: logging + recovery
	r.Use(gin.Logger(), gin.Recovery())

	// Redis backs the token blacklist and, when enabled, the upload rate limiter.
	var rdb *redis.Client
	if cfg.Redis.Host != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
		} else {
			rdb = client
			sessions.SetBlacklistClient(rdb)
			sessions.SetBlacklistPrefix(cfg.Redis.BlacklistPrefix)
			logger.Infof("connected to Redis: %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}

	// Persistence: MongoDB when configured and reachable, in-memory otherwise.
	var (
		userSvc     *users.Service
		atts        attrepo.Repository = attrepo.NewMemoryRepo()
		docs                           = docsvc.NewMemoryService()
		mongoClient *mongo.Client
	)
	if cfg.MongoDB.URI != "" {
		if client, err := connectMongo(ctx, cfg); err != nil {
			logger.Warnf("could not connect to MongoDB, using in-memory repositories: %v", err)
		} else {
			defer func() { _ = client.Disconnect(context.Background()) }()
			db := client.Database(cfg.MongoDB.Database)
			userSvc = users.NewService(users.NewMongoUserRepository(db.Collection("users")))
			atts = attrepo.NewMongoRepo(db)
			docs = docsvc.NewMongoService(db.Collection("documents"))
			mongoClient = client
		}
	}
	if mongoClient == nil {
		seedDocuments(ctx, docs, cfg.Server.SeedDocuments)
	}

	store, err := newStorage(cfg.Storage)
	if err != nil {
		logger.Fatalf("failed to initialize %s storage: %v", cfg.Storage.Backend, err)
	}

	verifier := newVerifier(ctx, cfg)
	resolve := func(ctx context.Context, claims map[string]interface{}) (*models.User, error) {
		if userSvc != nil {
			return userSvc.UpsertFromClaims(ctx, claims)
		}
		return users.FromClaims(claims), nil
	}
	r.Use(middleware.IdentityMiddleware(verifier, resolve))

	var uploadGuards []gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && rdb != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			uploadGuards = append(uploadGuards, middleware.RedisRateLimitMiddleware(rdb, "upload", cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			uploadGuards = append(uploadGuards, middleware.RateLimitMiddleware("upload", cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	h := handlers.NewAttachmentHandler(cfg.Attachments, attsvc.New(atts, store), docs, users.AllowAddAttachmentBy)
	h.Register(r, uploadGuards...)
	handlers.RegisterSwagger(r)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness endpoint: 200 only when configured dependencies are available
	r.GET("/ready", func(c *gin.Context) {
		mongoUp := cfg.MongoDB.URI == ""
		if mongoClient != nil {
			pctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			mongoUp = database.Ping(pctx, mongoClient) == nil
			cancel()
		}
		deps := map[string]bool{
			"storage": store != nil,
			"mongo":   mongoUp,
			"redis":   cfg.Redis.Host == "" || rdb != nil,
			"oidc":    cfg.Keycloak.URL == "" || verifier != nil,
		}
		ready := true
		for _, ok := range deps {
			ready = ready && ok
		}
		status, code := "ready", http.StatusOK
		if !ready {
			status, code = "not_ready", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status, "deps": deps, "uptime": time.Since(startTime).String()})
	})

	api := r.Group("/api/v1")
	if verifier != nil {
		api.GET("/me", middleware.AuthMiddleware(verifier), func(c *gin.Context) {
			if u := middleware.CurrentUser(c); u != nil {
				c.JSON(http.StatusOK, gin.H{"user": u, "canAddAttachment": users.AllowAddAttachmentBy(u)})
				return
			}
			claims, _ := c.Get("claims")
			c.JSON(http.StatusOK, gin.H{"claims": claims})
		})
	} else {
		api.GET("/me", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "authentication not configured"})
		})
	}

	// Expose Prometheus metrics
	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Infof("starting attachments service on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
}

// connectMongo retries with backoff to tolerate startup races.
func connectMongo(ctx context.Context, cfg *config.Config) (*mongo.Client, error) {
	const maxAttempts = 5
	backoff := time.Second
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		client, err := database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
		if err == nil {
			return client, nil
		}
		lastErr = err
		logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, err)
		if attempt < maxAttempts {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			backoff *= 2
		}
	}
	return nil, fmt.Errorf("after %d attempts: %w", maxAttempts, lastErr)
}

func newStorage(cfg config.StorageConfig) (storage.Storage, error) {
	if cfg.Backend == "minio" {
		return storage.NewMinIOStorage(&storage.MinIOConfig{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			UseSSL:    cfg.MinIOUseSSL,
			Bucket:    cfg.MinIOBucket,
		})
	}
	return storage.NewFilesystemStorage(cfg.Root)
}

// newVerifier picks the token verifier: Keycloak OIDC when configured, the
// shared HS256 secret otherwise. ALLOW_INSECURE_TOKEN=true enables an
// unverified parser for integration tests.
func newVerifier(ctx context.Context, cfg *config.Config) middleware.Verifier {
	if cfg.Keycloak.URL != "" && cfg.Keycloak.ClientID != "" {
		issuer := cfg.Keycloak.URL
		if cfg.Keycloak.Realm != "" {
			issuer = strings.TrimRight(cfg.Keycloak.URL, "/") + "/realms/" + cfg.Keycloak.Realm
		}
		ver, err := oidc.NewVerifier(ctx, issuer, cfg.Keycloak.ClientID)
		if err == nil {
			return ver
		}
		logger.Warnf("failed to initialize OIDC verifier for %s: %v", issuer, err)
	}
	if strings.EqualFold(strings.TrimSpace(os.Getenv("ALLOW_INSECURE_TOKEN")), "true") {
		logger.Warn("enabling insecure token verifier (integration mode)")
		return oidc.NewInsecureVerifier()
	}
	if cfg.JWT.Secret != "" {
		return tokens.NewHMACVerifier(cfg.JWT.Secret)
	}
	logger.Warn("no token verifier configured; every request is anonymous")
	return nil
}

func seedDocuments(ctx context.Context, docs docsvc.Service, paths []string) {
	for _, p := range paths {
		locale, slug, ok := strings.Cut(p, "/")
		if !ok {
			logger.Warnf("seed: ignoring %q, want locale/slug", p)
			continue
		}
		d := &document.Document{Locale: locale, Slug: slug, Title: slug[strings.LastIndex(slug, "/")+1:]}
		if _, err := docs.Create(ctx, d); err != nil {
			logger.Warnf("seed: %s: %v", p, err)
			continue
		}
		logger.Debugf("seed: created document %s", d.URL())
	}
}
