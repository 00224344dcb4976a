package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	_ "github.com/lib/pq"

	"github.com/linktrac/chatwidget/internal/billing"
	"github.com/linktrac/chatwidget/internal/config"
	"github.com/linktrac/chatwidget/internal/dialogue"
	"github.com/linktrac/chatwidget/internal/observability"
	"github.com/linktrac/chatwidget/internal/widget"
)

func main() {
	cfg := config.Load()

	// --- Transcript log (optional) ---
	transcriptLog := widget.NewNopLog()
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db open error: %v", err)
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			log.Fatalf("db ping error: %v", err)
		}

		transcriptLog = widget.NewPostgresLog(db)
	}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(observability.RequestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{cfg.AllowedOrigin},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	// --- Widget module wiring ---
	dialogueClient := dialogue.NewHTTPClient(cfg.DialogueBaseURL, cfg.RequestTimeout)
	billingClient := billing.NewHTTPClient(cfg.BillingBaseURL, cfg.RequestTimeout)
	widgetService := widget.NewService(dialogueClient, billingClient, transcriptLog)
	limiter := widget.NewSessionLimiter(cfg.SessionRate, cfg.SessionBurst)
	widgetHandler := widget.NewHandler(widgetService, limiter)

	widget.RegisterRoutes(r, widgetHandler)

	// --- health ---
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	log.Printf("listening on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
