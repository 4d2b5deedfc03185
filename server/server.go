package server

import (
	"crypto/tls"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/urfave/negroni"
	"golang.org/x/crypto/acme/autocert"

	"github.com/aeropulse/aeropulse-go/handlers"
	"github.com/aeropulse/aeropulse-go/ranking"
)

// Deps collects everything the route table needs.
type Deps struct {
	Pipeline  handlers.RAGPipeline
	Streamer  handlers.MessageStreamer
	Generator handlers.PlanGenerator
	Evaluator *ranking.Evaluator
	Codes     handlers.CodeStore
	Logger    *slog.Logger
}

func SetupRoutes(deps Deps) *mux.Router {
	r := mux.NewRouter()

	ragChat := handlers.NewRAGChatHandler(deps.Pipeline, deps.Logger)
	ragRetrieve := handlers.NewRAGRetrieveHandler(deps.Pipeline, deps.Logger)
	assistant := handlers.NewAssistantChatHandler(deps.Streamer, deps.Logger)
	plans := handlers.NewPlansHandler(deps.Generator, deps.Logger)
	recommendations := handlers.NewRecommendationsHandler(deps.Evaluator)
	authHandler := handlers.NewAuthHandler(deps.Codes, deps.Logger)

	r.Handle("/api/rag-chat", ragChat)
	r.Handle("/api/rag-retrieve", ragRetrieve)
	r.Handle("/api/assistant-chat", assistant)
	r.Handle("/api/documentation", handlers.NewDocumentationHandler())
	r.Handle("/api/generate-plans", plans)
	r.Handle("/api/recommendations", recommendations)
	r.HandleFunc("/api/auth/request-code", authHandler.RequestCode)
	r.HandleFunc("/api/auth/verify-code", authHandler.VerifyCode)

	return r
}

// ServeProduction runs the server behind autocert-managed TLS.
func ServeProduction(n *negroni.Negroni, domains []string, certCacheDir string) {
	autocertManager := autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(domains...),
		Cache:      autocert.DirCache(certCacheDir),
	}

	// Port 80 serves ACME "http-01" challenges and redirects everything
	// else to HTTPS.
	go func() {
		srv := &http.Server{
			Addr:         ":80",
			Handler:      autocertManager.HTTPHandler(nil),
			IdleTimeout:  time.Minute,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		}

		err := srv.ListenAndServe()
		log.Fatal(err)
	}()

	tlsConfig := &tls.Config{
		GetCertificate:           autocertManager.GetCertificate,
		PreferServerCipherSuites: true,
		CurvePreferences:         []tls.CurveID{tls.X25519, tls.CurveP256},
	}

	srv := &http.Server{
		Addr:         ":443",
		Handler:      n,
		TLSConfig:    tlsConfig,
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 0, // streaming endpoints hold the response open
	}

	err := srv.ListenAndServeTLS("", "") // Key and cert provided automatically by autocert.
	log.Fatal(err)
}

// ServeDevelopment runs the plain HTTP server.
func ServeDevelopment(s *http.Server) {
	log.Fatal(s.ListenAndServe())
}
