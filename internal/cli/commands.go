// Package cli implements the maintenance subcommands: rebuilding the
// database from the corpus tree without starting the server, and printing
// corpus statistics.
package cli

import (
	"database/sql"
	"fmt"
	"os"

	"askpalestine/internal/config"
	"askpalestine/internal/db"
	"askpalestine/internal/embedding"
	"askpalestine/internal/loader"
	"askpalestine/internal/store"
)

// RunLoad rebuilds the database from the corpus source tree and exits.
// An optional argument overrides the configured source directory.
func RunLoad(args []string, cfg *config.Config) {
	sourceDir := cfg.Data.Dir
	if len(args) > 0 {
		sourceDir = args[0]
	}

	database, err := db.InitDB(cfg.Data.DBPath)
	if err != nil {
		fmt.Printf("Error: cannot open database %s: %v\n", cfg.Data.DBPath, err)
		os.Exit(1)
	}
	defer database.Close()

	es := embedding.NewService(cfg.Embedding.Endpoint, cfg.Embedding.APIKey,
		cfg.Embedding.ModelName, cfg.Embedding.Dimension)

	l := loader.New(database, es, sourceDir, cfg.Data.PhotosDir)
	if err := l.Load(); err != nil {
		fmt.Printf("Error: corpus load failed: %v\n", err)
		os.Exit(1)
	}

	printStats(database)
}

// RunStats prints corpus totals for the configured database and exits.
func RunStats(cfg *config.Config) {
	database, err := db.InitDB(cfg.Data.DBPath)
	if err != nil {
		fmt.Printf("Error: cannot open database %s: %v\n", cfg.Data.DBPath, err)
		os.Exit(1)
	}
	defer database.Close()

	printStats(database)
}

func printStats(database *sql.DB) {
	counts, err := store.New(database).GetTotalCounts()
	if err != nil {
		fmt.Printf("Error: cannot read statistics: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Questions: %d (%d answered)\n", counts.TotalQuestions, counts.QuestionsWithAnswers)
	fmt.Printf("Voices:    %d\n", counts.TotalVoices)
	fmt.Printf("Answers:   %d\n", counts.TotalAnswers)
}
