package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"banker/internal/handler"
	"banker/internal/provider/mercury"
	"banker/internal/provider/wise"
	"banker/internal/transfer"
	"banker/internal/transport"
	"banker/pkg/config"
	"banker/pkg/domain"
	"banker/pkg/logger"
	"banker/pkg/validator"
)

func main() {
	cfg := config.Load()
	log := logger.New("bankerd")

	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", map[string]interface{}{"error": err.Error()})
	}

	log.Info("Starting banker daemon", map[string]interface{}{
		"port": cfg.Server.Port,
	})

	caller := transport.NewClient(cfg.HTTP.Timeout, log)
	ctx := context.Background()

	var providers []domain.Provider
	if cfg.Mercury.APIKey != "" {
		client, err := mercury.New(ctx, cfg.Mercury.APIKey, cfg.Mercury.BaseURL, caller, log)
		if err != nil {
			log.Fatal("Failed to initialize mercury", map[string]interface{}{"error": err.Error()})
		}
		providers = append(providers, client)
	}
	if cfg.Wise.APIToken != "" {
		client, err := wise.New(ctx, cfg.Wise.APIToken, cfg.Wise.BaseURL, caller, log)
		if err != nil {
			log.Fatal("Failed to initialize wise", map[string]interface{}{"error": err.Error()})
		}
		providers = append(providers, client)
	}

	router := transfer.NewRouter(log)
	bankHandler := handler.NewBankHandler(providers, router, validator.New(), log)

	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/accounts", bankHandler.ListAccounts).Methods(http.MethodGet)
	api.HandleFunc("/recipients", bankHandler.ListRecipients).Methods(http.MethodGet)
	api.HandleFunc("/rates", bankHandler.GetRate).Methods(http.MethodGet)
	api.HandleFunc("/transfers", bankHandler.CreateTransfer).Methods(http.MethodPost)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Forced shutdown", map[string]interface{}{"error": err.Error()})
	}
}
