package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-site-backend/api"
	"github.com/rpupo63/portfolio-site-backend/auth"
	"github.com/rpupo63/portfolio-site-backend/cache"
	"github.com/rpupo63/portfolio-site-backend/config"
	"github.com/rpupo63/portfolio-site-backend/database"
	"github.com/rpupo63/portfolio-site-backend/media"
	"github.com/rpupo63/portfolio-site-backend/models"
	"github.com/rpupo63/portfolio-site-backend/services"
	"github.com/rpupo63/portfolio-site-backend/worker"
)

func main() {
	fmt.Println("Initializing app...")

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
	}

	settings, err := config.Load(config.New())
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	setLogLevel(settings.LogLevel)

	db, err := database.Open(settings.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}

	// If generating models, run generation and exit
	if settings.GenerateModels {
		log.Info().Msg("Generating models and query helpers...")
		if err := models.GenerateModels(db, "./generated"); err != nil {
			log.Fatal().Err(err).Msg("Model generation failed")
		}
		return
	}

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}

	// If generating column mismatch report, run report and exit
	if settings.GenerateColumnReport {
		log.Info().Msg("Generating column mismatch report...")
		if err := models.LogColumnMismatchReport(db); err != nil {
			log.Fatal().Err(err).Msg("Column report failed")
		}
		return
	}

	ctx := context.Background()
	currentDB := database.New(db)

	store, err := newStore(ctx, settings.Uploads)
	if err != nil {
		log.Fatal().Err(err).Msg("Error configuring upload storage")
	}

	redisClient := cache.New(settings.Redis.Addr, settings.Redis.Password, settings.Redis.DB)
	defer redisClient.Close()
	if err := redisClient.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("Redis unreachable; token revocation disabled until it returns")
	}

	pool := worker.NewPool(settings.WorkerCount)
	defer pool.Stop()

	var mailer services.Mailer
	if m := services.NewResendMailer(settings.Mail); m != nil {
		mailer = m
	} else {
		log.Info().Msg("E-mail not configured; notifications are stored only")
	}

	svc := services.New(services.Dependencies{
		DB:       currentDB,
		Ingestor: media.NewIngestor(store, media.WithMaxPixels(settings.Uploads.MaxPixels)),
		Tokens:   auth.NewTokenService(settings.Auth.JWTSecret, settings.Auth.TokenTTL, redisClient),
		Notifier: services.NewNotifier(pool, mailer),
		Limits:   services.ImageLimits{MaxWidth: settings.Uploads.MaxWidth, MaxHeight: settings.Uploads.MaxHeight},
		BaseURL:  settings.BaseURL,
	})

	if settings.ProvisionOwner {
		owner, created, err := svc.Accounts.ProvisionOwner(ctx, services.OwnerSeed{
			Username: settings.Owner.Username,
			Email:    settings.Owner.Email,
			Name:     settings.Owner.Name,
			Password: settings.Owner.Password,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Owner provisioning failed")
		}
		log.Info().Str("username", owner.Username).Bool("created", created).Msg("Owner account ready")
	}

	scheduler := services.NewScheduler()
	sweeper := services.NewOrphanSweeper(currentDB, store, settings.Cleanup.Grace)
	if err := scheduler.AddSweep(settings.Cleanup.Schedule, sweeper); err != nil {
		log.Fatal().Err(err).Str("schedule", settings.Cleanup.Schedule).Msg("Invalid CLEANUP_SCHEDULE")
	}
	scheduler.Start()

	errChannel := make(chan error, 2)

	server, err := api.NewServer(api.Dependencies{
		Services: svc,
		DB:       currentDB,
		Cache:    redisClient,
		Settings: settings,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing server")
	}

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Info().Msgf("Closing server: %v", fatalErr)

	server.ShutdownGracefully(30 * time.Second)

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	scheduler.Stop(stopCtx)
}

func newStore(ctx context.Context, uploads config.UploadSettings) (media.Store, error) {
	if uploads.Backend == config.UploadBackendS3 {
		s3Store, err := media.NewS3StoreFromEnv(ctx, uploads.S3Region, uploads.S3Bucket, uploads.S3Prefix)
		if err != nil {
			return nil, err
		}
		log.Info().Str("bucket", uploads.S3Bucket).Msg("Storing uploads in S3")
		return s3Store, nil
	}
	log.Info().Str("folder", uploads.Folder).Msg("Storing uploads on local disk")
	return media.NewLocalStore(uploads.Folder), nil
}

func setLogLevel(level string) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
