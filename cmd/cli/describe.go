package main

import (
	"fmt"
	"time"

	"fuel-rl/internal/analysis"
	"fuel-rl/internal/environment"
	"fuel-rl/internal/model"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"
)

func describeCmd(g *globals) *cobra.Command {
	var head int
	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Summarize the dataset: head, column statistics, correlations and oracle reward",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			ds, src, err := g.dataset(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			p := analysis.ComputePotential(ds)

			fmt.Printf("source: %s\n", src)
			fmt.Printf("rows: %d  steps per episode: %d  %s .. %s\n\n", p.Rows, p.Steps,
				p.Start.Format(time.DateOnly), p.End.Format(time.DateOnly))

			fmt.Printf("%-12s", "date")
			for _, f := range model.Fields() {
				fmt.Printf(" %18s", f)
			}
			fmt.Println()
			for _, r := range ds.Head(head).Records() {
				fmt.Printf("%-12s", r.Date.Format(time.DateOnly))
				for _, v := range r.Observation() {
					fmt.Printf(" %18.2f", v)
				}
				fmt.Println()
			}
			fmt.Println()

			fmt.Printf("%-18s %6s %9s %8s %8s %8s %8s %8s %8s\n", "column", "count", "mean", "std", "min", "p05", "p50", "p95", "max")
			for _, c := range p.Columns {
				fmt.Printf("%-18s %6d %9.2f %8.2f %8.2f %8.2f %8.2f %8.2f %8.2f\n",
					c.Name, c.Count, c.Mean, c.Std, c.Min, c.P05, c.P50, c.P95, c.Max)
			}
			fmt.Println()

			fmt.Printf("correlation (%v):\n", model.Fields())
			fmt.Printf("%.3f\n\n", mat.Formatted(analysis.Correlation(ds), mat.Squeeze()))

			env, err := environment.NewFuelPriceEnv(ds)
			if err == nil {
				fmt.Printf("observation space: %v  action space: Discrete(%d)\n", env.ObservationSpace().Shape(), env.ActionSpace().N)
			}
			fmt.Printf("mean |move| ULSP=%.3f ULSD=%.3f  oracle reward=%.2f\n", p.MeanAbsMoveULSP, p.MeanAbsMoveULSD, p.OracleReward)
			return nil
		},
	}
	cmd.Flags().IntVar(&head, "head", 5, "Rows to print")
	return cmd
}
