package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/stockpass/ticket-service/internal/events"
	"github.com/stockpass/ticket-service/internal/handler"
	"github.com/stockpass/ticket-service/internal/repository"
	"github.com/stockpass/ticket-service/internal/service"
	"github.com/stockpass/ticket-service/pkg/config"
	"github.com/stockpass/ticket-service/pkg/middleware"
	pkgtls "github.com/stockpass/ticket-service/pkg/tls"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("Failed to build logger:", err)
	}
	defer logger.Sync()

	dynamoClient, err := repository.NewDynamoDBClient(cfg)
	if err != nil {
		log.Fatal("Failed to create DynamoDB client:", err)
	}

	productRepo := repository.NewProductRepository(dynamoClient, cfg.ProductTableName, cfg.TicketTableName)
	ticketRepo := repository.NewTicketRepository(dynamoClient, cfg.TicketTableName, cfg.ProductTableName)
	statusRepo := repository.NewStatusRepository(dynamoClient, cfg.StatusTableName)

	var publisher service.EventPublisher
	if cfg.KafkaBrokers != "" {
		producer := events.NewProducer(cfg.KafkaBrokers, logger)
		defer producer.Close()
		publisher = producer
	}

	productService := service.NewProductService(productRepo, publisher, logger)
	ticketService := service.NewTicketService(ticketRepo, productRepo, publisher, logger)
	statusService := service.NewStatusService(statusRepo, logger)

	productHandler := handler.NewProductHandler(productService, logger)
	ticketHandler := handler.NewTicketHandler(ticketService, logger)
	statusHandler := handler.NewStatusHandler(statusService, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/products", productHandler.CreateProduct)
		v1.GET("/products", productHandler.ListProducts)
		v1.GET("/products/:id", productHandler.GetProduct)
		v1.PUT("/products/:id", productHandler.UpdateProduct)
		v1.DELETE("/products/:id", productHandler.DeleteProduct)

		v1.POST("/tickets", ticketHandler.IssueTickets)
		v1.GET("/tickets", ticketHandler.ListOutstandingTickets)
		v1.GET("/tickets/:id", ticketHandler.GetTicket)
		v1.GET("/tickets/product/:product_id", ticketHandler.ListTicketsByProduct)
		v1.POST("/tickets/redeem", ticketHandler.RedeemTicket)

		v1.POST("/status", statusHandler.CreateStatusCheck)
		v1.GET("/status", statusHandler.ListStatusChecks)

		v1.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "healthy"})
		})
	}

	tlsConfig, err := pkgtls.LoadTLSConfig(&cfg.TLS, logger)
	if err != nil {
		logger.Fatal("Failed to load TLS config", zap.Error(err))
	}
	defer pkgtls.Cleanup()

	srv := &http.Server{
		Addr:      ":" + cfg.Port,
		Handler:   router,
		TLSConfig: tlsConfig,
	}

	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Port))

		var err error
		if tlsConfig != nil {
			go pkgtls.WatchCertificates(logger)
			err = srv.ListenAndServeTLS("", "")
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server exited")
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(lvl)
	return zapCfg.Build()
}
