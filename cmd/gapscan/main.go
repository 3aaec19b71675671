package main

import (
	"encoding/csv"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"gapscan/pkg/fundamentals"
	"gapscan/pkg/marketdata"
	"gapscan/pkg/screener"
)

const (
	defaultSymbolsPath = "stocks.csv"
	defaultLogPath     = "watchlist.log"
	defaultWindowFrom  = 50
	defaultWindowTo    = 59
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, checking for environment variables")
	}

	apiKey := os.Getenv("ALPACA_API_KEY")
	apiSecret := os.Getenv("ALPACA_SECRET_KEY")
	if apiKey == "" || apiSecret == "" {
		log.Fatal("ALPACA_API_KEY and ALPACA_SECRET_KEY must be set in environment or .env file")
	}

	logger, err := newLogger(envOrDefault("WATCHLIST_LOG", defaultLogPath))
	if err != nil {
		log.Fatalf("Error creating log file: %v", err)
	}
	defer logger.Sync()
	logger = logger.With(zap.String("run_id", uuid.NewString()))

	symbols, err := loadSymbols(envOrDefault("WATCHLIST_SYMBOLS", defaultSymbolsPath))
	if err != nil {
		log.Fatalf("Error loading symbol universe: %v", err)
	}
	logger.Info("symbol universe loaded",
		zap.String("op", "startup"),
		zap.Int("symbols", len(symbols)))

	market := marketdata.NewClient(apiKey, apiSecret, logger)
	funds := fundamentals.NewClient(logger)
	engine := screener.NewEngine(market, funds, logger)
	runner := screener.NewRunner(engine, os.Stdout, logger)

	runner.Run(symbols,
		windowEnv("WATCHLIST_WINDOW_FROM", defaultWindowFrom),
		windowEnv("WATCHLIST_WINDOW_TO", defaultWindowTo))
}

func newLogger(path string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	return cfg.Build()
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func windowEnv(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	window, err := strconv.Atoi(value)
	if err != nil || window < 1 {
		log.Printf("Invalid %s, using default %d", key, fallback)
		return fallback
	}
	return window
}

// loadSymbols reads the ticker universe from a CSV file, one or more
// symbols per row.
func loadSymbols(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}

	var symbols []string
	for _, record := range records {
		for _, field := range record {
			symbol := strings.ToUpper(strings.TrimSpace(field))
			if symbol != "" {
				symbols = append(symbols, symbol)
			}
		}
	}
	return symbols, nil
}
