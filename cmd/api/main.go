package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/doctorsportal/appointments-system/internal/api"
	mongostore "github.com/doctorsportal/appointments-system/internal/infrastructure/db/mongo"
	redisstore "github.com/doctorsportal/appointments-system/internal/infrastructure/db/redis"
	"github.com/doctorsportal/appointments-system/internal/infrastructure/identity/firebase"
	"github.com/doctorsportal/appointments-system/internal/infrastructure/payment"
	"github.com/doctorsportal/appointments-system/internal/pkg/config"
	"github.com/doctorsportal/appointments-system/pkg/logger"
)

// @title						Doctors Portal API
// @version					1.0
// @description				Appointment booking, doctor directory, user roles and payments.
// @BasePath					/
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
// @description				Firebase ID token: Bearer <token>
func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "doctors-portal",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoClient, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "doctors-portal",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	if err := mongostore.EnsureIndexes(ctx,
		mongostore.NewUserRepository(db),
		mongostore.NewRoleAuditRepository(db),
		mongostore.NewAppointmentRepository(db),
	); err != nil {
		log.Fatal().Err(err).Msg("failed to create indexes")
	}

	verifier, err := firebase.NewVerifier(cfg.Firebase.ProjectID, firebase.WithJWKSURL(cfg.Firebase.JWKSURL))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build token verifier")
	}

	gateway, err := payment.NewStripeGateway(cfg.Payment.StripeSecret)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build payment gateway")
	}

	e := api.NewRouter(api.RouterDeps{
		DB:       db,
		Redis:    rdb,
		Verifier: verifier,
		Gateway:  gateway,
		Currency: cfg.Payment.Currency,
		Options:  api.Options{CORSOrigins: cfg.CORSOrigins},
		Log:      log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("mongodb disconnect")
	}
	if err := rdb.Close(); err != nil {
		log.Error().Err(err).Msg("redis close")
	}
}
