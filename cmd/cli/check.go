package main

import (
	"fmt"

	"fuel-rl/internal/environment"

	"github.com/spf13/cobra"
)

func checkCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the environment built from the dataset against the environment contract",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			ds, src, err := g.dataset(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			env, err := environment.NewFuelPriceEnv(ds)
			if err != nil {
				return err
			}
			if err := environment.Check(env, ds.Len()); err != nil {
				return fmt.Errorf("environment check failed:\n%w", err)
			}
			fmt.Printf("environment OK: %s (%d rows, %d steps per episode)\n", src, ds.Len(), ds.Len()-1)
			return nil
		},
	}
}
