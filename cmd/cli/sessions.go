package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func sessionsCmd(g *globals) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List stored sessions and checkpoints",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			recs, err := st.ListSessions(cmd.Context(), limit)
			if err != nil {
				return err
			}
			fmt.Printf("%-36s %-10s %-8s %-6s %-6s %-10s %s\n", "id", "policy", "episodes", "wins", "losses", "avg", "created")
			for _, r := range recs {
				fmt.Printf("%-36s %-10s %-8d %-6d %-6d %-10.2f %s\n",
					r.ID, r.Policy, r.Episodes, r.Wins, r.Losses, r.AverageReward, r.CreatedAt.Format(time.RFC3339))
			}

			cps, err := st.ListCheckpoints(cmd.Context())
			if err != nil {
				return err
			}
			if len(cps) > 0 {
				fmt.Println()
				fmt.Printf("%-24s %-8s %-8s %s\n", "checkpoint", "kind", "updates", "updated")
				for _, c := range cps {
					fmt.Printf("%-24s %-8s %-8d %s\n", c.Name, c.Kind, c.Updates, c.UpdatedAt.Format(time.RFC3339))
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "last", 20, "Sessions to show, newest first")
	return cmd
}
