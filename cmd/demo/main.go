package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"fuel-rl/internal/agent"
	"fuel-rl/internal/analysis"
	"fuel-rl/internal/config"
	"fuel-rl/internal/data"
	"fuel-rl/internal/driver"
	"fuel-rl/internal/environment"
	"fuel-rl/internal/logger"
	"fuel-rl/internal/policy"
)

// Demo:
// - Load the weekly fuel price CSV
// - Build the environment and sample its spaces
// - Play random episodes, then train a linear Q agent and evaluate it
// - Round-trip the agent through a checkpoint file
func main() {
	dataPath := flag.String("data", "data/fuel_prices.csv", "Path to the fuel price CSV")
	cfgPath := flag.String("config", "", "Path to YAML config (optional)")
	episodes := flag.Int("episodes", 10, "Episodes per evaluation")
	timesteps := flag.Int("timesteps", 10000, "Training timesteps")
	outDir := flag.String("out", "", "Optional directory for the checkpoint and ledger CSV")
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			panic(err)
		}
	}
	// Keep the walkthrough output readable.
	cfg.Log.Level = "warn"
	if err := logger.Setup(cfg.Log); err != nil {
		panic(err)
	}

	ds, err := data.Load(*dataPath)
	if err != nil {
		panic(err)
	}

	fmt.Println("== 1. dataset head")
	for _, r := range ds.Head(5).Records() {
		fmt.Printf("%s  ULSP=%.2f ULSD=%.2f duty=%.2f/%.2f vat=%.1f/%.1f\n",
			r.Date.Format("2006-01-02"), r.PumpPriceULSP, r.PumpPriceULSD,
			r.DutyRateULSP, r.DutyRateULSD, r.VATRateULSP, r.VATRateULSD)
	}

	fmt.Println("\n== 2. describe")
	for _, c := range analysis.Describe(ds) {
		fmt.Printf("%-18s mean=%8.2f std=%7.2f min=%7.2f max=%7.2f\n", c.Name, c.Mean, c.Std, c.Min, c.Max)
	}

	env, err := environment.NewFuelPriceEnv(ds)
	if err != nil {
		panic(err)
	}
	fmt.Println("\n== 3. spaces")
	rng := rand.New(rand.NewSource(cfg.Training.Seed))
	fmt.Printf("observation space shape=%v  action space=Discrete(%d)\n", env.ObservationSpace().Shape(), env.ActionSpace().N)
	fmt.Printf("action sample: %s  first observation: %v\n", env.ActionSpace().Sample(rng), env.Reset())

	fmt.Println("\n== 4. environment check")
	if err := environment.Check(env, ds.Len()); err != nil {
		panic(err)
	}
	fmt.Println("ok")

	fmt.Println("\n== 5. random policy")
	random, err := driver.RunSession(env, policy.NewRandom(cfg.Training.Seed), *episodes, cfg.Session.MaxSteps)
	if err != nil {
		panic(err)
	}
	printSummary(random)

	fmt.Println("\n== 6. oracle upper bound")
	fmt.Printf("oracle reward per episode: %.2f\n", analysis.OracleReward(ds))

	fmt.Println("\n== 7. train")
	q, err := agent.NewLinearQ(agent.NormalizerFromDataset(ds), agent.Params{
		LearningRate: cfg.Training.LearningRate,
		Gamma:        cfg.Training.Gamma,
	})
	if err != nil {
		panic(err)
	}
	stats, err := driver.New().Learn(context.Background(), env, q, driver.Schedule{
		TotalTimesteps:      *timesteps,
		EpsilonStart:        cfg.Training.EpsilonStart,
		EpsilonEnd:          cfg.Training.EpsilonEnd,
		ExplorationFraction: cfg.Training.ExplorationFraction,
	}, rng)
	if err != nil {
		panic(err)
	}
	fmt.Printf("timesteps=%d episodes=%d mean reward=%.2f\n", stats.Timesteps, stats.Episodes, stats.MeanEpisodeReward)

	fmt.Println("\n== 8. evaluate trained agent")
	engine := driver.New(driver.WithLedger(*outDir != ""))
	trained, err := engine.RunSession(env, policy.Greedy(q), *episodes, cfg.Session.MaxSteps)
	if err != nil {
		panic(err)
	}
	printSummary(trained)

	fmt.Println("\n== 9. checkpoint round trip")
	dir := *outDir
	if dir == "" {
		dir, err = os.MkdirTemp("", "fuelrl-demo")
		if err != nil {
			panic(err)
		}
		defer os.RemoveAll(dir)
	}
	path := filepath.Join(dir, "fuel_price_q.json")
	if err := q.SaveFile(path); err != nil {
		panic(err)
	}
	reloaded, err := agent.LoadFile(path)
	if err != nil {
		panic(err)
	}
	obs := ds.Observation(0)
	fmt.Printf("saved %s, greedy(first obs) before=%s after=%s\n", path, q.Greedy(obs), reloaded.Greedy(obs))

	if *outDir != "" {
		ledger := filepath.Join(*outDir, "ledger.csv")
		if err := driver.WriteLedgerCSV(ledger, trained.Ledger()); err != nil {
			panic(err)
		}
		fmt.Printf("wrote ledger to %s\n", ledger)
	}
}

func printSummary(s *driver.Summary) {
	for _, ep := range s.Episodes {
		fmt.Printf("Episode:%d Score:%.2f\n", ep.Episode+1, ep.Reward)
	}
	fmt.Printf("%s: wins=%d losses=%d average=%.2f\n", s.Policy, s.Wins, s.Losses, s.AverageReward)
}
