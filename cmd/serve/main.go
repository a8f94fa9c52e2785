package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/shadowcyng/ecomlytics/database"
	"github.com/shadowcyng/ecomlytics/handlers"
	"github.com/shadowcyng/ecomlytics/middleware"
	"github.com/shadowcyng/ecomlytics/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debugf("No .env file loaded: %v", err)
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	dbClient, err := database.NewPostgresDB()
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL database: %v", err)
	}
	defer dbClient.Close()

	userStore := store.NewUserStore(dbClient.DB)
	if err := userStore.EnsureSchema(context.Background()); err != nil {
		log.Fatalf("Failed to prepare users schema: %v", err)
	}
	analyticsStore := store.NewAnalyticsStore(dbClient.DB)

	authHandlers := handlers.NewAuthHandlers(userStore)
	analyticsHandlers := handlers.NewAnalyticsHandlers(analyticsStore)

	r := gin.Default()
	r.Use(middleware.CORSMiddleware())

	api := r.Group("/api")
	{
		api.POST("/signup", authHandlers.Signup)
		api.POST("/login", authHandlers.Login)
		api.POST("/logout", authHandlers.Logout)

		protected := api.Group("/")
		protected.Use(middleware.AuthRequired())
		{
			stats := protected.Group("/stats")
			{
				stats.GET("/customer-lifetime-value", analyticsHandlers.CustomerLifetimeValue)
				stats.GET("/product-performance", analyticsHandlers.ProductPerformance)
				stats.GET("/seasonality", analyticsHandlers.DailySeasonality)
				stats.GET("/cohort-retention", analyticsHandlers.CohortRetention)
				stats.GET("/payment-risk", analyticsHandlers.PaymentRisk)
				stats.GET("/executive-kpis", analyticsHandlers.ExecutiveKPIs)
				stats.GET("/report", analyticsHandlers.Report)
			}
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		log.Infof("Analytics API listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("API server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exiting")
}
