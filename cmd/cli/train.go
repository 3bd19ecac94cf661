package main

import (
	"fmt"
	"math/rand"

	"fuel-rl/internal/agent"
	"fuel-rl/internal/driver"
	"fuel-rl/internal/environment"
	"fuel-rl/internal/logger"
	"fuel-rl/internal/policy"

	"github.com/spf13/cobra"
)

func trainCmd(g *globals) *cobra.Command {
	var (
		timesteps int
		seed      int64
		out       string
		name      string
	)
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a linear Q agent and save the checkpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			tc := cfg.Training
			if cmd.Flags().Changed("timesteps") {
				tc.TotalTimesteps = timesteps
			}
			if cmd.Flags().Changed("seed") {
				tc.Seed = seed
			}
			if out != "" {
				cfg.Checkpoint.Path = out
			}
			if name != "" {
				cfg.Checkpoint.Name = name
			}

			ds, _, err := g.dataset(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			env, err := environment.NewFuelPriceEnv(ds)
			if err != nil {
				return err
			}
			q, err := agent.NewLinearQ(agent.NormalizerFromDataset(ds), agent.Params{
				LearningRate: tc.LearningRate,
				Gamma:        tc.Gamma,
			})
			if err != nil {
				return err
			}

			engine := driver.New(driver.WithLogger(logger.For("train")))
			stats, err := engine.Learn(cmd.Context(), env, q, driver.Schedule{
				TotalTimesteps:      tc.TotalTimesteps,
				EpsilonStart:        tc.EpsilonStart,
				EpsilonEnd:          tc.EpsilonEnd,
				ExplorationFraction: tc.ExplorationFraction,
				MaxEpisodeSteps:     tc.MaxEpisodeSteps,
			}, rand.New(rand.NewSource(tc.Seed)))
			if err != nil {
				return err
			}

			if err := q.SaveFile(cfg.Checkpoint.Path); err != nil {
				return err
			}
			fmt.Printf("Trained %d timesteps (%d episodes, mean reward %.2f), saved %s\n",
				stats.Timesteps, stats.Episodes, stats.MeanEpisodeReward, cfg.Checkpoint.Path)

			if cfg.Checkpoint.Name != "" {
				st, err := openStore(cfg)
				if err != nil {
					return err
				}
				defer st.Close()
				if err := st.SaveCheckpoint(cmd.Context(), cfg.Checkpoint.Name, q); err != nil {
					return err
				}
				fmt.Printf("Stored checkpoint %q in %s\n", cfg.Checkpoint.Name, cfg.Store.Path)
			}

			reward, err := driver.RunEpisode(env, policy.Greedy(q), ds.Len())
			if err != nil {
				return err
			}
			fmt.Printf("Greedy episode reward=%.2f\n", reward)
			return nil
		},
	}
	cmd.Flags().IntVar(&timesteps, "timesteps", 10000, "Total environment steps (overrides training.total_timesteps)")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Exploration seed (overrides training.seed)")
	cmd.Flags().StringVar(&out, "out", "", "Checkpoint file (overrides checkpoint.path)")
	cmd.Flags().StringVar(&name, "name", "", "Also store the checkpoint under this name (overrides checkpoint.name)")
	return cmd
}
