package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gorilla/mux"
	"github.com/urfave/negroni"

	"github.com/aeropulse/aeropulse-go/auth"
	"github.com/aeropulse/aeropulse-go/config"
	"github.com/aeropulse/aeropulse-go/db"
	"github.com/aeropulse/aeropulse-go/logging"
	"github.com/aeropulse/aeropulse-go/ranking"
	"github.com/aeropulse/aeropulse-go/server"
	"github.com/aeropulse/aeropulse-go/services/llm_service"
	"github.com/aeropulse/aeropulse-go/services/plan_service"
	"github.com/aeropulse/aeropulse-go/services/rag_service"
)

func main() {
	cfg := config.Load()

	logger, err := initLogger()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	pool, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to the database: %v", err)
	}
	defer pool.Close()

	store := rag_service.NewChunkStore(pool, logger)
	if err := store.EnsureSchema(context.Background()); err != nil {
		log.Fatalf("Failed to ensure chunk schema: %v", err)
	}

	embedder := rag_service.NewEmbeddingClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.EmbedModel)
	templates := rag_service.NewTemplateSource(pool, logger)
	streamer := llm_service.NewStreamingService(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.ChatModel, logger)
	pipeline := rag_service.NewPipeline(embedder, store, templates, streamer, logger)

	evaluator := ranking.NewEvaluator(loadProtocols(cfg, logger))
	llm := llm_service.NewOpenAIService(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.ChatModel, logger)
	generator := plan_service.NewGenerator(llm, evaluator, logger)

	codes := auth.NewCodeStore(cfg.CodeTTL)
	codes.StartCleanup(time.Minute)
	defer codes.StopCleanup()

	r := server.SetupRoutes(server.Deps{
		Pipeline:  pipeline,
		Streamer:  streamer,
		Generator: generator,
		Evaluator: evaluator,
		Codes:     codes,
		Logger:    logger,
	})
	n := setupNegroni(r)

	if cfg.Environment == "production" {
		server.ServeProduction(n, cfg.Domains, cfg.CertCacheDir)
	} else {
		srv := &http.Server{
			Addr:        ":" + cfg.HTTPPort,
			Handler:     n,
			IdleTimeout: time.Minute,
			ReadTimeout: 5 * time.Second,
			// No write timeout: the chat endpoints stream for as long as
			// the upstream model keeps producing deltas.
		}
		server.ServeDevelopment(srv)
	}
}

func setupNegroni(r *mux.Router) *negroni.Negroni {
	n := negroni.New()

	n.Use(negroni.NewRecovery())
	n.Use(negroni.NewLogger())

	n.UseHandler(r)
	return n
}

func loadProtocols(cfg config.Config, logger *slog.Logger) []ranking.Protocol {
	if cfg.ProtocolRules == "" {
		return ranking.DefaultProtocols()
	}
	protocols, err := ranking.LoadProtocols(cfg.ProtocolRules)
	if err != nil {
		logger.Warn("Failed to load protocol rules file, using built-in table",
			slog.String("path", cfg.ProtocolRules),
			slog.String("error", err.Error()))
		return ranking.DefaultProtocols()
	}
	return protocols
}

func initLogger() (*slog.Logger, error) {
	logDir := filepath.Join("logs", "engine")

	fileHandler, err := logging.NewDailyFileHandler(logDir, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	if err != nil {
		return nil, err
	}

	return slog.New(fileHandler), nil
}
