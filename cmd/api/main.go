package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "engineer-search/docs" // Swagger docs
	"engineer-search/internal/advisor"
	"engineer-search/internal/api"
	"engineer-search/internal/audit"
	"engineer-search/internal/config"
	"engineer-search/internal/graph"
	"engineer-search/internal/knowledge"
	"engineer-search/internal/llm"
	"engineer-search/internal/search"
	"engineer-search/internal/similarity"
)

// @title Engineer Search API
// @version 1.0
// @description Constraint-aware engineer recommendation over a skill and domain graph

// @contact.name API Support
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api
// @schemes http

func main() {
	cfg := config.LoadConfig()

	kb := knowledge.Default()
	if cfg.InsufficientThreshold > 0 {
		kb.InsufficientThreshold = cfg.InsufficientThreshold
	}

	log.Println("Connecting to graph database...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	db, err := graph.Connect(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword, cfg.Neo4jDatabase)
	cancel()
	if err != nil {
		log.Fatal("graph connect:", err)
	}
	defer db.Close(context.Background())
	log.Println("Graph database connected successfully!")

	var llmSvc *llm.Service
	if cfg.LLMProvider != "" && cfg.LLMProvider != "none" {
		llmSvc = llm.NewService(cfg.LLMProvider, cfg.LLMAPIKey, cfg.LLMModel)
		log.Printf("LLM provider configured: %s (%s)", cfg.LLMProvider, cfg.LLMModel)
	}

	var auditStore *audit.Store
	if cfg.AuditDatabaseURL != "" {
		auditStore, err = audit.Open(cfg.AuditDatabaseURL)
		if err != nil {
			log.Println("Warning: audit sink unavailable:", err)
			auditStore = nil
		} else {
			defer auditStore.Close()
		}
	}

	searchSvc := search.NewService(db, kb)
	adv := advisor.New(db, kb)
	if llmSvc != nil {
		adv.SetNarrator(llmSvc)
	}
	searchSvc.SetAdviser(adv)
	if auditStore != nil {
		searchSvc.SetAudit(auditStore)
	}

	simEngine := similarity.NewEngine(db, kb, searchSvc)

	apiSrv := api.NewAPI(db, kb, searchSvc, simEngine, llmSvc, auditStore)
	router := api.NewRouter(apiSrv)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Println("server shutdown:", err)
		}
		close(idleConnsClosed)
	}()

	log.Printf("API server listening on :%s\n", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}

	<-idleConnsClosed
}
