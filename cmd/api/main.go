package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"cc-insights-go/internal/actionable"
	"cc-insights-go/internal/aggregator"
	"cc-insights-go/internal/config"
	"cc-insights-go/internal/dataset"
	"cc-insights-go/internal/enrichment"
	"cc-insights-go/internal/logger"
	"cc-insights-go/internal/matcher"
	"cc-insights-go/internal/pipeline"
	"cc-insights-go/internal/storage"
)

func main() {
	_ = godotenv.Load() // loads .env

	log := logger.New()
	log.WithField("service", "cc-insights-go").Info("starting service")

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}

	store, err := openStorage(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to open storage")
	}
	defer store.Close()

	m, err := matcher.New(cfg.Dictionary())
	if err != nil {
		log.WithError(err).Fatal("invalid phrase dictionary")
	}
	pipe := pipeline.New(store, enrichment.NewBuilder(m), log.WithField("component", "pipeline"))

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		logger.New().WithRequest(r).Info("health check")
		fmt.Fprint(w, "ok")
	})

	// enrich one conversation from the dataset
	mux.HandleFunc("/enrich", func(w http.ResponseWriter, r *http.Request) {
		reqLog := logger.New().WithRequest(r).WithField("handler", "enrich")

		date := r.URL.Query().Get("date")
		convID := r.URL.Query().Get("conversation_id")
		if date == "" || convID == "" {
			reqLog.Warn("missing date or conversation_id")
			http.Error(w, "missing date or conversation_id", http.StatusBadRequest)
			return
		}
		reqLog = reqLog.WithField("conversation_id", convID)

		conv, err := dataset.LoadConversation(filepath.Join(cfg.Dataset.Root, date, convID))
		if err != nil {
			reqLog.WithError(err).Warn("conversation load failed")
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		rec, skipped, err := pipe.Enrich(r.Context(), conv)
		if err != nil {
			reqLog.WithError(err).Error("enrich failed")
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		reqLog.WithField("skipped", skipped).Info("enrich finished")
		writeJSON(w, rec)
	})

	// dataset overview for one date, no enrichment
	mux.HandleFunc("/summary", func(w http.ResponseWriter, r *http.Request) {
		reqLog := logger.New().WithRequest(r).WithField("handler", "summary")

		date := r.URL.Query().Get("date")
		if date == "" {
			date = cfg.Dataset.Date
		}
		if date == "" {
			reqLog.Warn("missing date")
			http.Error(w, "missing date", http.StatusBadRequest)
			return
		}

		convs, err := dataset.LoadDate(cfg.Dataset.Root, date)
		if err != nil {
			reqLog.WithError(err).Warn("dataset load failed")
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		writeJSON(w, dataset.Summarize(convs))
	})

	// enrich a full date batch and return the aggregate insight
	mux.HandleFunc("/batch", func(w http.ResponseWriter, r *http.Request) {
		reqLog := logger.New().WithRequest(r).WithField("handler", "batch")

		date := r.URL.Query().Get("date")
		if date == "" {
			date = cfg.Dataset.Date
		}
		if date == "" {
			reqLog.Warn("missing date")
			http.Error(w, "missing date", http.StatusBadRequest)
			return
		}

		start := time.Now()
		res, records, err := pipe.RunBatch(r.Context(), cfg.Dataset.Root, date)
		if err != nil {
			reqLog.WithError(err).Error("batch failed")
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		ins := aggregator.Aggregate(records)
		reqLog.WithField("duration_ms", time.Since(start).Milliseconds()).Info("batch finished")

		writeJSON(w, map[string]interface{}{
			"result":       res,
			"insight":      ins,
			"action_cards": actionable.Generate(ins),
		})
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.WithField("addr", addr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server terminated")
	}
}

func openStorage(cfg *config.Config) (storage.Storage, error) {
	if cfg.Database.UseInMemory {
		return storage.NewMemoryStorage(), nil
	}
	return storage.NewPostgresStorage(storage.DatabaseConfig{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
