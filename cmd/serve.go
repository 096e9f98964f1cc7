package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-amqp/pkg/amqp"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	v1 "docrag/handler/http/v1"
	"docrag/src/core/retrieval"
	jobctrl "docrag/src/infrastructure/job"
	"docrag/src/infrastructure/log"
	"docrag/src/storage/minioctrl"
	"docrag/src/storage/postgres/documentctrl"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the document chat server",
	Long:  `The serve command starts an HTTP server that imports documents and answers questions about them.`,
	Run:   RunServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	settingDefaultConfig()
}

func RunServer(cmd *cobra.Command, args []string) {
	db, err := openPostgres()
	if err != nil {
		log.Error(err, "Failed to connect to database")
		return
	}

	if err := db.AutoMigrate(&documentctrl.Document{}, &jobctrl.Job{}); err != nil {
		log.Error(err, "Failed to migrate database")
		return
	}

	// Initialize Ollama client and bind it to the configured models
	oc := newOllamaClient()
	provider := newOllamaProvider(oc)

	// Initialize Weaviate-backed collection
	store := newWeaviateStore()
	ctx := context.Background()
	if err := store.EnsureSchema(ctx); err != nil {
		log.Error(err, "Failed to ensure collection schema")
		return
	}

	orchestrator, err := retrieval.NewOrchestrator(provider, store, provider, viper.GetInt("retrieval.top_k"))
	if err != nil {
		log.Error(err, "Failed to create orchestrator")
		return
	}

	// Initialize MinioService for uploads
	minioService, err := minioctrl.NewMinioService(
		viper.GetString("minio.endpoint"),
		viper.GetString("minio.access_key"),
		viper.GetString("minio.secret_key"),
		viper.GetBool("minio.use_ssl"),
	)
	if err != nil {
		log.Error(err, "Failed to initialize minio service")
		return
	}

	// Initialize AMQP publisher for enqueueing ingest jobs
	amqpPublisher, err := amqp.NewPublisher(
		amqp.NewDurableQueueConfig(viper.GetString("amqp.url")),
		watermill.NewStdLogger(false, false),
	)
	if err != nil {
		log.Error(err, "Failed to create amqp publisher")
		return
	}
	defer amqpPublisher.Close()

	documentService, err := documentctrl.NewDocumentService(db)
	if err != nil {
		log.Error(err, "Failed to initialize document service")
		return
	}

	// The server only enqueues jobs, the worker runs them
	jobRepo := jobctrl.NewPostgresJobRepository(db)
	jobService := jobctrl.NewJobService(amqpPublisher, jobRepo, watermill.NewStdLogger(false, false), nil)

	checks := []v1.HealthCheck{
		{Name: "postgres", Check: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}},
		{Name: "weaviate", Check: func(ctx context.Context) error {
			_, err := store.Count(ctx)
			return err
		}},
		{Name: "ollama", Check: func(ctx context.Context) error {
			_, err := oc.Models(ctx)
			return err
		}},
	}

	handler := v1.NewHandler(documentService, minioService, jobService, orchestrator, store, checks)

	// Setup gin router
	r := gin.Default()
	handler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:    ":" + viper.GetString("server.port"),
		Handler: r,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(err, "Failed to start server")
			return
		}
	}()
	log.Info(fmt.Sprintf("Server listening on :%s", viper.GetString("server.port")))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	timeout, err := time.ParseDuration(viper.GetString("server.shutdown_timeout"))
	if err != nil {
		log.Error(err, "Invalid shutdown timeout, using default 5s")
		timeout = 5 * time.Second
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	sqlDB, err := db.DB()
	if err != nil {
		log.Error(err, "Failed to get underlying *sql.DB")
	} else {
		if err := sqlDB.Close(); err != nil {
			log.Error(err, "Error closing database connection")
		}
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(err, "Server forced to shutdown")
	}

	log.Info("Server exited")
}
