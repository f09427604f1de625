package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"askpalestine/internal/cli"
	"askpalestine/internal/config"
	"askpalestine/internal/embedding"
	"askpalestine/internal/handler"
	"askpalestine/internal/interactions"
	"askpalestine/internal/lifecycle"
	"askpalestine/internal/middleware"
)

func main() {
	// Local development reads OPENAI_API_KEY etc. from a .env file; in
	// production the variables come from the environment directly.
	_ = godotenv.Load()

	if err := os.MkdirAll("./data", 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	// 1. Load configuration
	cm, err := config.NewConfigManager("./data/config.json")
	if err != nil {
		log.Fatalf("Failed to create config manager: %v", err)
	}
	if err := cm.Load(); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg := cm.Get()

	// Maintenance subcommands run without the server:
	//   askpalestine load [source-dir]   rebuild the database from the tree
	//   askpalestine stats               print corpus totals
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "load":
			cli.RunLoad(os.Args[2:], cfg)
		case "stats":
			cli.RunStats(cfg)
		default:
			fmt.Printf("Unknown command %q (expected load or stats)\n", os.Args[1])
			os.Exit(1)
		}
		return
	}

	// 2. Create service instances
	es := embedding.NewService(cfg.Embedding.Endpoint, cfg.Embedding.APIKey,
		cfg.Embedding.ModelName, cfg.Embedding.Dimension)
	lc := lifecycle.NewManager(cfg.Data.DBPath, cfg.Data.Dir, cfg.Data.PhotosDir, es)
	defer lc.Close()
	fw := interactions.NewForwarder(cfg.Interactions.WebhookURL)

	app := handler.NewApp(lc, fw, cfg.Search.DefaultLimit)

	// 3. Warm up: build the database before the first request arrives. A
	// failure here is logged, not fatal; initialization is retried on demand.
	if _, err := lc.Store(); err != nil {
		log.Printf("[Main] startup initialization failed, will retry on first request: %v", err)
	}

	// 4. Register HTTP API handlers
	registerAPIHandlers(app, cfg)

	// 5. Serve voice photos copied out of the corpus by the loader
	http.Handle("/photos/", http.StripPrefix("/photos/",
		http.FileServer(http.Dir(cfg.Data.PhotosDir))))

	// 6. Start HTTP server
	fmt.Printf("AskPalestine API starting on http://%s\n", cfg.Server.Addr)
	log.Fatal(http.ListenAndServe(cfg.Server.Addr, nil))
}

func registerAPIHandlers(app *handler.App, cfg *config.Config) {
	base := middleware.Chain(middleware.RequestID(), middleware.CORS())

	// Search and interactions hit the embedding provider and the webhook,
	// so they get rate limited on top of the base chain.
	rl := middleware.NewRateLimiter(30, time.Minute)
	limited := middleware.Chain(middleware.RequestID(), middleware.CORS(), rl.Limit())

	http.HandleFunc("/api/search", limited(handler.HandleSearch(app)))

	http.HandleFunc("/api/questions/answered", base(handler.HandleAnsweredQuestions(app)))
	http.HandleFunc("/api/questions/unanswered", base(handler.HandleUnansweredQuestions(app)))
	http.HandleFunc("/api/questions/stats", base(handler.HandleQuestionStats(app)))
	// GET /api/questions/{id} and /api/questions/{id}/answers
	http.HandleFunc("/api/questions/", base(handler.HandleQuestionByID(app)))

	http.HandleFunc("/api/voices", base(handler.HandleVoices(app)))
	http.HandleFunc("/api/voices/", base(handler.HandleVoiceByID(app)))

	http.HandleFunc("/api/gems", base(handler.HandleGems(app)))
	http.HandleFunc("/api/genocidal-voices", base(handler.HandleGenocidalVoices(app)))
	http.HandleFunc("/api/genocidal-voices/", base(handler.HandleGenocidalVoices(app)))

	http.HandleFunc("/api/interactions", limited(handler.HandleInteractions(app)))
	http.HandleFunc("/api/admin/reload", base(handler.HandleReload(app)))
}
