package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	pkgdb "github.com/Skotchmaster/pharmacy/pkg/db"
	"github.com/Skotchmaster/pharmacy/pkg/logging"
	"github.com/Skotchmaster/pharmacy/pkg/obs"

	"github.com/Skotchmaster/pharmacy/internal/config"
	"github.com/Skotchmaster/pharmacy/internal/events"
	"github.com/Skotchmaster/pharmacy/internal/httpserver"
	"github.com/Skotchmaster/pharmacy/internal/media"
	"github.com/Skotchmaster/pharmacy/internal/models"
	"github.com/Skotchmaster/pharmacy/internal/notify"
	"github.com/Skotchmaster/pharmacy/internal/otp"
	"github.com/Skotchmaster/pharmacy/internal/repo"
	"github.com/Skotchmaster/pharmacy/internal/search"
	"github.com/Skotchmaster/pharmacy/internal/service"
)

const version = "0.1.0"

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := obs.InitTracer(ctx, cfg.ServiceName, version, cfg.Env, cfg.OTELEndpoint)
	if err != nil {
		log.Fatalf("tracer: %v", err)
	}

	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	db, err := pkgdb.Open(initCtx, cfg.DatabaseURL, pkgdb.DefaultPool())
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := pkgdb.Migrate(db, models.All()...); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	r := repo.New(db)

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers)
		logger.Info("kafka_enabled", "brokers", cfg.KafkaBrokers)
	}

	// left nil when search is not configured; the service falls back to the database
	var index service.ProductIndex
	if cfg.ESURL != "" {
		esCtx, esCancel := context.WithTimeout(ctx, 10*time.Second)
		es, err := search.NewClient(esCtx, search.ClientConfig{URL: cfg.ESURL, Username: cfg.ESUser, Password: cfg.ESPassword})
		if err == nil {
			pi := search.NewProductIndex(es, cfg.ESIndex)
			if err = pi.EnsureIndex(esCtx); err == nil {
				index = pi
				logger.Info("search_enabled", "index", cfg.ESIndex)
			}
		}
		esCancel()
		if err != nil {
			logger.Warn("search_disabled", "reason", "elasticsearch unavailable", "error", err)
		}
	}

	var uploader media.Uploader = media.Disabled{}
	if cfg.CloudinaryURL != "" {
		cld, err := media.NewCloudinary(cfg.CloudinaryURL, cfg.CloudinaryFolder)
		if err != nil {
			log.Fatalf("cloudinary: %v", err)
		}
		uploader = cld
	}

	notifier := notify.NewRouter(
		notify.SMTPConfig{Host: cfg.SMTPHost, Port: cfg.SMTPPort, User: cfg.SMTPUser, Password: cfg.SMTPPassword, From: cfg.MailFrom},
		notify.TwilioConfig{AccountSID: cfg.TwilioAccountSID, AuthToken: cfg.TwilioAuthToken, From: cfg.TwilioFrom},
		logger,
	)

	codes := otp.NewStore(otp.Config{
		TTL:         cfg.OTPTTL,
		MaxAttempts: cfg.OTPMaxAttempts,
		Cooldown:    cfg.OTPCooldown,
	}, otp.WithLogger(logger))
	go codes.Run(ctx, cfg.OTPSweepInterval)

	pricing := service.Pricing{ShippingFee: cfg.ShippingFee, FreeShippingThreshold: cfg.FreeShippingThreshold}
	categories := &service.CategoryService{Repo: r}

	deps := &httpserver.Deps{
		Auth: &httpserver.AuthHTTP{
			Svc: &service.AuthService{
				Repo:          r,
				OTP:           codes,
				Notifier:      notifier,
				Events:        publisher,
				JWTSecret:     []byte(cfg.JWTSecret),
				RefreshSecret: []byte(cfg.RefreshSecret),
				AccessTTL:     cfg.AccessTTL,
				RefreshTTL:    cfg.RefreshTTL,
				CodeTTL:       cfg.OTPTTL,
			},
			CookieSecure: cfg.CookieSecure,
		},
		Users:      &httpserver.UserHTTP{Svc: &service.UserService{Repo: r}},
		Brands:     &httpserver.BrandHTTP{Svc: &service.BrandService{Repo: r}},
		Categories: &httpserver.CategoryHTTP{Svc: categories},
		Products: &httpserver.ProductHTTP{Svc: &service.ProductService{
			Repo:       r,
			Categories: categories,
			Index:      index,
			Media:      uploader,
			Events:     publisher,
		}},
		Cart:     &httpserver.CartHTTP{Svc: &service.CartService{Repo: r, Pricing: pricing}},
		Wishlist: &httpserver.WishlistHTTP{Svc: &service.WishlistService{Repo: r}},
		Orders:   &httpserver.OrderHTTP{Svc: &service.OrderService{Repo: r, Events: publisher, Pricing: pricing}},
		Prescriptions: &httpserver.PrescriptionHTTP{Svc: &service.PrescriptionService{
			Repo:     r,
			Media:    uploader,
			Events:   publisher,
			MaxBytes: cfg.UploadMaxBytes,
		}},
		Media:       &httpserver.MediaHTTP{Svc: &service.MediaService{Media: uploader, MaxBytes: cfg.UploadMaxBytes}},
		JWTSecret:   []byte(cfg.JWTSecret),
		AuthLimiter: httpserver.RateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst, 10*time.Minute),
		Ready: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}

	e := echo.New()
	e.HideBanner = true
	httpserver.Setup(e, httpserver.MiddlewareConfig{
		ServiceName:  cfg.ServiceName,
		CORSOrigins:  cfg.CORSOrigins,
		BodyLimit:    cfg.BodyLimit,
		RateLimit:    cfg.RateLimit,
		RateBurst:    cfg.RateBurst,
		CookieSecure: cfg.CookieSecure,
		CSRF:         true,
	}, logger)
	httpserver.Register(e, deps)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           e,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("http_listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting_down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http_shutdown_failed", "error", err)
	}
	codes.Close()
	if err := publisher.Close(); err != nil {
		logger.Error("kafka_close_failed", "error", err)
	}
	if err := pkgdb.Close(db); err != nil {
		logger.Error("db_close_failed", "error", err)
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		logger.Error("tracer_shutdown_failed", "error", err)
	}

	logger.Info("shutdown_complete")
}
