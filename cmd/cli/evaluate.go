package main

import (
	"fmt"
	"os"
	"path/filepath"

	"fuel-rl/internal/driver"
	"fuel-rl/internal/environment"
	"fuel-rl/internal/logger"
	"fuel-rl/internal/policy"
	"fuel-rl/internal/store"

	"github.com/spf13/cobra"
)

func evaluateCmd(g *globals) *cobra.Command {
	var (
		name     string
		params   map[string]string
		episodes int
		maxSteps int
		ledger   string
		save     bool
	)
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Run a policy for a number of episodes and report wins, losses and average reward",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			sc := cfg.Session
			if cmd.Flags().Changed("episodes") {
				sc.Episodes = episodes
			}
			if cmd.Flags().Changed("max-steps") {
				sc.MaxSteps = maxSteps
			}
			if ledger != "" {
				sc.Ledger = ledger
			}
			spec := cfg.Policy.Spec()
			if name != "" {
				spec.Name = name
			}
			extra, err := parseParams(params)
			if err != nil {
				return err
			}
			if len(extra) > 0 {
				merged := map[string]any{}
				for k, v := range spec.Params {
					merged[k] = v
				}
				for k, v := range extra {
					merged[k] = v
				}
				spec.Params = merged
			}

			ds, src, err := g.dataset(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			env, err := environment.NewFuelPriceEnv(ds)
			if err != nil {
				return err
			}

			var st *store.Store
			if save || (spec.Name == "qlearn" && cfg.Store.Path != "") {
				if st, err = openStore(cfg); err != nil {
					return err
				}
				defer st.Close()
			}
			deps := policy.Deps{Dataset: ds}
			if st != nil {
				deps.LoadCheckpoint = st.CheckpointLoader(cmd.Context())
			}
			pol, err := policy.Build(spec, deps)
			if err != nil {
				return err
			}

			engine := driver.New(driver.WithLogger(logger.For("evaluate")), driver.WithLedger(sc.Ledger != ""))
			summary, err := engine.RunSessionContext(cmd.Context(), env, pol, sc.Episodes, sc.MaxSteps)
			if err != nil {
				return err
			}

			for _, ep := range summary.Episodes {
				fmt.Printf("Episode:%d Score:%.2f\n", ep.Episode+1, ep.Reward)
			}
			fmt.Printf("Policy=%s Episodes=%d Wins=%d Losses=%d Average reward=%.2f\n",
				summary.Policy, len(summary.Episodes), summary.Wins, summary.Losses, summary.AverageReward)

			if sc.Ledger != "" {
				if err := os.MkdirAll(filepath.Dir(sc.Ledger), 0o755); err != nil {
					return err
				}
				rows := summary.Ledger()
				if err := driver.WriteLedgerCSV(sc.Ledger, rows); err != nil {
					return err
				}
				fmt.Printf("Wrote %d rows to %s\n", len(rows), sc.Ledger)
			}
			if save {
				rec := store.NewSessionRecord(spec, src.String(), sc.MaxSteps, summary)
				if err := st.SaveSession(cmd.Context(), &rec); err != nil {
					return err
				}
				fmt.Printf("Saved session %s\n", rec.ID)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "policy", "p", "", "Policy name (overrides policy.name)")
	cmd.Flags().StringToStringVar(&params, "param", nil, "Policy params as key=value, repeatable")
	cmd.Flags().IntVarP(&episodes, "episodes", "e", 10, "Episodes to run (overrides session.episodes)")
	cmd.Flags().IntVar(&maxSteps, "max-steps", 1000, "Step budget per episode (overrides session.max_steps)")
	cmd.Flags().StringVar(&ledger, "ledger", "", "Write per-step rows to this CSV (overrides session.ledger)")
	cmd.Flags().BoolVar(&save, "save", false, "Persist the session in the store")
	return cmd
}
