package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"fuel-rl/internal/config"
	"fuel-rl/internal/data"
	"fuel-rl/internal/logger"
	"fuel-rl/internal/model"
	"fuel-rl/internal/store"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// globals are the flags shared by every subcommand.
type globals struct {
	configPath string
	dataPath   string
	dataURL    string
	limit      int
	logLevel   string
	storePath  string
}

func main() {
	_ = godotenv.Load()

	var g globals
	root := &cobra.Command{
		Use:           "fuelrl",
		Short:         "Evaluate and train trading policies on weekly road fuel prices",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", os.Getenv("CONFIG_PATH"), "Path to YAML config")
	root.PersistentFlags().StringVar(&g.dataPath, "data", "", "Fuel price CSV or JSON (overrides data.path)")
	root.PersistentFlags().StringVar(&g.dataURL, "url", "", "Download the fuel price CSV from this URL (overrides data.url)")
	root.PersistentFlags().IntVarP(&g.limit, "limit", "n", 0, "Limit to the first N rows (0=all)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "debug, info, warn or error (overrides log.level)")
	root.PersistentFlags().StringVar(&g.storePath, "store", "", "sqlite path (overrides store.path)")

	root.AddCommand(
		describeCmd(&g),
		checkCmd(&g),
		trainCmd(&g),
		evaluateCmd(&g),
		sessionsCmd(&g),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// load resolves the configuration, applies flag overrides and sets up logging.
func (g *globals) load() (*config.Config, error) {
	cfg := config.Default()
	if g.configPath != "" {
		var err error
		if cfg, err = config.LoadUnchecked(g.configPath); err != nil {
			return nil, err
		}
	}
	if g.dataPath != "" {
		cfg.Data.Path = g.dataPath
		cfg.Data.URL = ""
	}
	if g.dataURL != "" {
		cfg.Data.URL = g.dataURL
	}
	if g.limit > 0 {
		cfg.Data.Limit = g.limit
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	if g.storePath != "" {
		cfg.Store.Path = g.storePath
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := logger.Setup(cfg.Log); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (g *globals) dataset(ctx context.Context, cfg *config.Config) (*model.Dataset, data.Source, error) {
	src := data.Source{Path: cfg.Data.Path, URL: cfg.Data.URL, Limit: cfg.Data.Limit}
	ds, err := data.Open(ctx, src)
	if err != nil {
		return nil, src, err
	}
	return ds, src, nil
}

func openStore(cfg *config.Config) (*store.Store, error) {
	if cfg.Store.Path == "" {
		return nil, fmt.Errorf("store.path is empty")
	}
	return store.Open(cfg.Store.Path)
}

// parseParams turns key=value flags into policy params. Values are decoded
// as YAML scalars so numbers stay numbers.
func parseParams(raw map[string]string) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		var val any
		if err := yaml.Unmarshal([]byte(v), &val); err != nil {
			return nil, fmt.Errorf("param %s: %w", k, err)
		}
		if val == nil {
			val = v
		}
		out[strings.TrimSpace(k)] = val
	}
	return out, nil
}
