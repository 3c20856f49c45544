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

	"github.com/spf13/cobra"

	"github.com/calcount/calcount/internal/api"
	"github.com/calcount/calcount/internal/config"
	"github.com/calcount/calcount/internal/core"
	"github.com/calcount/calcount/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if err := newRootCmd().Execute(); err != nil {
		log.Fatalf("%v", err)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "calcount",
		Short:         "Calorie and macro tracker with InBody report analysis",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadConfig(); err != nil {
				return err
			}
			if config.AppConfig.Debug() {
				log.Println("Service starting in DEBUG mode")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	})
	root.AddCommand(newMigrateCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	var down bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply (or with --down, roll back) database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbStore, err := openStore(true)
			if err != nil {
				return err
			}
			defer dbStore.Close()

			if down {
				err = dbStore.MigrateDown()
			} else {
				err = dbStore.MigrateUp()
			}
			if err != nil {
				return err
			}

			version, dirty, err := dbStore.SchemaVersion()
			if err != nil {
				return err
			}
			log.Printf("Schema at version %d (dirty=%v) on %s", version, dirty, dbStore.Dialect())
			return nil
		},
	}
	cmd.Flags().BoolVar(&down, "down", false, "roll back all migrations")
	return cmd
}

func openStore(skipMigrations bool) (*store.Store, error) {
	dbStore, err := store.Open(config.AppConfig.DatabaseURL, store.Options{
		Debug:          config.AppConfig.Debug(),
		SkipMigrations: skipMigrations,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return dbStore, nil
}

func runServer() error {
	if err := config.AppConfig.RequireGemini(); err != nil {
		return err
	}

	dbStore, err := openStore(false)
	if err != nil {
		return err
	}
	defer dbStore.Close()

	llmService, err := core.NewLLMService(context.Background(), config.AppConfig.GeminiAPIKey, config.AppConfig.GeminiModel)
	if err != nil {
		return err
	}
	defer llmService.Close()

	tracker := core.NewTrackerService(dbStore)
	inbody := core.NewInBodyService(dbStore, config.AppConfig.InBodyHistoryLimit)

	apiHandler := api.NewAPIHandler(tracker, inbody, llmService, config.AppConfig.MaxUploadBytes())
	router := api.NewRouter(apiHandler)

	serverAddr := fmt.Sprintf(":%s", config.AppConfig.HTTPPort)
	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second, // image uploads
		WriteTimeout: 120 * time.Second, // InBody analysis can take a while
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("Starting server on %s. Press Ctrl+C to quit.", serverAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- fmt.Errorf("could not listen on %s: %w", serverAddr, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return err
	case <-quit:
	}
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("Server exiting gracefully")
	return nil
}
