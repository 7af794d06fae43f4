package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"erpbackend/config"
	"erpbackend/controllers"
	"erpbackend/handlers"
	"erpbackend/logger"
	"erpbackend/middleware"
	"erpbackend/routes"
	"erpbackend/storage"
	"erpbackend/store"
	"erpbackend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logg := logger.New(cfg.Env, cfg.LogLevel, "erp-backend")
	defer func() { _ = logg.Sync() }()
	zap.ReplaceGlobals(logg)

	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	logg.Info("starting", zap.String("mode", gin.Mode()), zap.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, db, err := config.ConnectDatabase(ctx, cfg)
	if err != nil {
		logg.Fatal("database connection failed", zap.Error(err))
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logg.Error("database disconnect failed", zap.Error(err))
		}
	}()

	collections := map[string]string{
		"admin":       config.AdminCollection,
		"client":      config.ClientCollection,
		"invoice":     config.InvoiceCollection,
		"quote":       config.QuoteCollection,
		"payment":     config.PaymentCollection,
		"paymentMode": config.PaymentModeCollection,
		"taxes":       config.TaxesCollection,
		"setting":     config.SettingCollection,
	}
	registry := store.NewRegistry()
	for entity, name := range collections {
		registry.Register(entity, store.NewMongoCollection(db, name))
	}
	coll := func(entity string) store.Collection {
		c, _ := registry.Lookup(entity)
		return c
	}
	passwords := store.NewMongoCollection(db, config.AdminPasswordCollection)

	downloads := registry.Subset(routes.DownloadEntities...)
	logg.Info("pdf downloads enabled", zap.Strings("entities", downloads.Entities()))

	st := storage.Disabled()
	if cfg.MinIO.Endpoint != "" {
		if st, err = storage.NewMinIO(ctx, cfg.MinIO); err != nil {
			logg.Fatal("object storage init failed", zap.Error(err))
		}
	} else {
		logg.Warn("object storage disabled, uploads will be rejected")
	}

	var limiter middleware.Limiter
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
		})
		defer rdb.Close()
		limiter = middleware.NewRedisLimiter(rdb)
	}

	if err = middleware.InitMetrics(prometheus.DefaultRegisterer); err != nil {
		logg.Fatal("metrics registration failed", zap.Error(err))
	}

	loc := cfg.Location()
	settings := controllers.NewSettingsStore(coll("setting"), logg.Named("settings"))
	ctl := routes.Controllers{
		Auth: &controllers.AuthController{
			Admins:     coll("admin"),
			Passwords:  passwords,
			Settings:   settings,
			Mailer:     utils.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password),
			SecretName: cfg.JWTSecretName,
			AppEmail:   cfg.AppEmail,
			BaseURL:    cfg.BaseURL,
		},
		Admin:   controllers.NewAdminController(coll("admin"), passwords),
		Client:  controllers.NewClientController(coll("client"), loc),
		Invoice: controllers.NewInvoiceController(coll("invoice"), coll("payment"), settings),
		Quote:   controllers.NewQuoteController(coll("quote"), settings, loc),
		Payment: controllers.NewPaymentController(coll("payment"), coll("invoice"), settings),
		Setting: controllers.NewSettingController(coll("setting")),
		Generics: map[string]*controllers.CRUD{
			"paymentMode": controllers.NewCRUD("paymentMode", coll("paymentMode")),
			"taxes":       controllers.NewCRUD("taxes", coll("taxes")),
		},
	}

	s := gocron.NewScheduler(loc)
	secret := []byte(os.Getenv(cfg.JWTSecretName))
	if _, err = s.Every(1).Day().At("01:01").Do(func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := utils.PruneExpiredSessions(jobCtx, passwords, secret, logg.Named("jobs")); err != nil {
			logg.Error("session pruning failed", zap.Error(err))
		}
	}); err != nil {
		logg.Fatal("schedule session pruning", zap.Error(err))
	}
	if _, err = s.Every(1).Day().At("01:05").Do(func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := utils.FlagOverdueInvoices(jobCtx, coll("invoice"), time.Now(), logg.Named("jobs")); err != nil {
			logg.Error("overdue flagging failed", zap.Error(err))
		}
	}); err != nil {
		logg.Fatal("schedule overdue flagging", zap.Error(err))
	}
	s.StartAsync()
	defer s.Stop()

	r := gin.New()
	r.Use(handlers.Recovery(cfg.Env, logg))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logg.Named("http")))
	r.Use(middleware.PrometheusMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
	}))

	routes.InitializeRoutes(r, routes.Deps{
		Controllers: ctl,
		Registry:    downloads,
		Storage:     st,
		Admins:      coll("admin"),
		Passwords:   passwords,
		SecretName:  cfg.JWTSecretName,
		Limiter:     limiter,
		RateLimit:   cfg.Redis.Limit,
		RateWindow:  cfg.Redis.Window,
		MetricsFrom: cfg.MetricsAllow,
		Log:         logg.Named("ratelimit"),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logg.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error("graceful shutdown failed", zap.Error(err))
	}
}
