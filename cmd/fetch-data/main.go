package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fuel-rl/internal/analysis"
	"fuel-rl/internal/data"
	"fuel-rl/internal/environment"
	"fuel-rl/internal/logger"
	"fuel-rl/internal/model"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	var (
		url        = flag.String("url", os.Getenv("FUEL_PRICES_URL"), "CSV to download (default: $FUEL_PRICES_URL)")
		outputPath = flag.String("output", "data/fuel_prices.csv", "Output file path")
		timeout    = flag.Duration("timeout", 30*time.Second, "HTTP timeout")
		raw        = flag.Bool("raw", false, "Write the downloaded bytes unchanged instead of the normalized CSV")
	)
	flag.Parse()
	log := logger.For("fetch-data")

	if *url == "" {
		log.Fatal().Msg("--url or FUEL_PRICES_URL is required")
	}

	fmt.Printf("Downloading %s\n", *url)
	fetcher := data.NewFetcher(*timeout)
	ds, body, err := fetcher.FetchDataset(context.Background(), *url)
	if err != nil {
		var fe *data.FetchError
		if errors.As(err, &fe) && fe.RetryAfter != "" {
			log.Fatal().Err(err).Str("url", *url).Str("retry_after", fe.RetryAfter).Msg("failed to download")
		}
		log.Fatal().Err(err).Str("url", *url).Msg("failed to download")
	}

	env, err := environment.NewFuelPriceEnv(ds)
	if err != nil {
		log.Fatal().Err(err).Int("rows", ds.Len()).Msg("downloaded data cannot drive an environment")
	}
	if err := environment.Check(env, ds.Len()); err != nil {
		log.Fatal().Err(err).Msg("environment check failed")
	}

	if err := os.MkdirAll(filepath.Dir(*outputPath), 0o755); err != nil {
		log.Fatal().Err(err).Str("output", *outputPath).Msg("failed to create output directory")
	}
	if *raw {
		err = os.WriteFile(*outputPath, body, 0o644)
	} else {
		err = writeCSV(*outputPath, ds)
	}
	if err != nil {
		log.Fatal().Err(err).Str("output", *outputPath).Msg("failed to write output")
	}

	p := analysis.ComputePotential(ds)
	fmt.Printf("Saved %d rows (%s .. %s) to %s\n", p.Rows,
		p.Start.Format(time.DateOnly), p.End.Format(time.DateOnly), *outputPath)
	fmt.Printf("Oracle reward per episode: %.2f\n", p.OracleReward)
}

func writeCSV(path string, ds *model.Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := data.WriteFuelCSV(f, ds); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
