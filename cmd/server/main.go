package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Raminhrd/Kaaro/internal/catalog"
	"github.com/Raminhrd/Kaaro/internal/cfg"
	"github.com/Raminhrd/Kaaro/internal/middleware"
	"github.com/Raminhrd/Kaaro/internal/specialist"
	"github.com/Raminhrd/Kaaro/internal/task"
	"github.com/Raminhrd/Kaaro/internal/user"
)

func main() {
	conf := cfg.LoadConfig()
	logger := log.New(os.Stdout, "[kaaro] ", log.LstdFlags|log.Lmicroseconds)

	db := mustConnectDB(conf)
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatalf("failed to access sql DB: %v", err)
	}
	defer sqlDB.Close()

	if err := db.AutoMigrate(&user.User{}, &specialist.SpecialistRequest{}, &catalog.Service{}, &task.Task{}); err != nil {
		logger.Fatalf("failed to run migrations: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     conf.RedisAddr,
		Password: conf.RedisPassword,
	})
	defer redisClient.Close()

	var producer task.EventProducer
	if brokers := splitCSV(conf.KafkaBrokers); len(brokers) > 0 && conf.KafkaTopic != "" {
		producer = task.NewKafkaProducer(brokers, conf.KafkaTopic)
		defer producer.Close()
	} else {
		logger.Println("kafka is not configured, task events disabled")
	}

	var smsSender user.SMSSender
	if sender, err := user.NewFarazSender(user.FarazConfig{
		APIKey:       conf.SMSAPIKey,
		SenderNumber: conf.SMSSenderNumber,
		PatternCode:  conf.SMSPatternCode,
		PhoneBookID:  conf.SMSPhoneBookID,
	}); err != nil {
		logger.Printf("sms is not configured, otp codes will not be delivered: %v", err)
	} else {
		smsSender = sender
	}

	jwtSecret := []byte(conf.JWTSecret)
	if len(jwtSecret) == 0 {
		logger.Fatal("JWT_SECRET must be set")
	}
	jwtTTL := parseTTL(conf.JWTTTL, 3600)

	verifier := user.NewVerifier(jwtSecret, redisClient)

	userRepo := user.NewRepository(db)
	userService := user.NewUserService(userRepo, redisClient, smsSender, jwtSecret, jwtTTL)
	userHandler := user.NewHandler(userService, verifier, jwtTTL)

	specialistRepo := specialist.NewRepository(db)
	specialistService := specialist.NewRequestService(specialistRepo)
	specialistHandler := specialist.NewHandler(specialistService, verifier)

	catalogRepo := catalog.NewRepository(db)
	catalogService := catalog.NewCatalogService(catalogRepo)
	catalogHandler := catalog.NewHandler(catalogService)

	taskRepo := task.NewRepository(db)
	gate := task.NewGate(specialistService)
	taskService := task.NewTaskService(taskRepo, gate, catalogService, producer)
	taskHandler := task.NewHandler(taskService, verifier)

	httpMux := http.NewServeMux()
	userHandler.RegisterRoutes(httpMux)
	specialistHandler.RegisterRoutes(httpMux)
	catalogHandler.RegisterRoutes(httpMux)
	taskHandler.RegisterRoutes(httpMux)

	httpServer := &http.Server{
		Addr:    ":" + pickPort(conf.HTTPPort, "8080"),
		Handler: applyHTTPMiddleware(httpMux, conf),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)

	go func() {
		logger.Printf("HTTP server listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Println("shutdown signal received")
	case err := <-errCh:
		logger.Printf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Printf("http shutdown error: %v", err)
	}
	logger.Println("kaaro service stopped")
}

func mustConnectDB(conf cfg.Config) *gorm.DB {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		conf.DBHost,
		conf.DBPort,
		conf.DBUser,
		conf.DBPassword,
		conf.DBName,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to init sql DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db
}

func applyHTTPMiddleware(mux *http.ServeMux, conf cfg.Config) http.Handler {
	limiter := middleware.NewRateLimiter(100, time.Minute)

	handler := http.Handler(mux)
	handler = limiter.Middleware(handler)
	handler = middleware.RequestSizeLimit(5 << 20)(handler)
	handler = middleware.CORS(conf.CORSOrigins)(handler)
	handler = middleware.SecurityHeaders(handler)
	return handler
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	var result []string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}

func pickPort(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func parseTTL(value string, fallback int64) int64 {
	if secs, err := strconv.ParseInt(value, 10, 64); err == nil && secs > 0 {
		return secs
	}
	return fallback
}
