package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mbuddy-api/internal/application/otp"
	"github.com/mbuddy-api/internal/config"
	"github.com/mbuddy-api/internal/infrastructure/dynamo"
	"github.com/mbuddy-api/internal/infrastructure/smtp"
	snsinfra "github.com/mbuddy-api/internal/infrastructure/sns"
	transporthttp "github.com/mbuddy-api/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them and the TTL index if missing).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	var notifier otp.Notifier
	switch cfg.NotifierChannel {
	case "sns":
		p, err := snsinfra.NewPublisher(cfg)
		if err != nil {
			log.Fatalf("sns notifier: %v", err)
		}
		notifier = p
	default:
		notifier = smtp.NewMailer(cfg)
	}

	deps := &transporthttp.Deps{
		OTPRepo:      dynamo.NewOTPRepo(dynamoClient, cfg.DynamoTables.OTPs),
		DeliveryRepo: dynamo.NewDeliveryRepo(dynamoClient, cfg.DynamoTables.Deliveries),
		Notifier:     notifier,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s, notifier=%s)", cfg.AppPort, cfg.AppEnv, notifier.Channel())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
