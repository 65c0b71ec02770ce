package cli

import (
	"context"
	"fmt"

	"github.com/covena/covena/pkg/seed"
	pooluc "github.com/covena/covena/pkg/usecase/pool"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func explainCommand() *cli.Command {
	var cfg config

	flags := globalFlags(&cfg)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "explain",
		Usage: "Explain the mutual pool math behind the monthly contribution",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogger(ctx)

			advisor, err := cfg.newAdvisor(ctx)
			if err != nil {
				return err
			}

			ds, err := seed.Demo()
			if err != nil {
				return goerr.Wrap(err, "failed to load pool snapshot")
			}

			uc := pooluc.New(ds.Stats, ds.Payments, ds.Incidents, advisor)

			stats := uc.Stats()
			fmt.Fprintf(c.Root().Writer, "Pool %s: %d participants, $%.0f, risk %s, solvency %.1f%%\n\n",
				ds.Member.PoolID, stats.Participants, stats.TotalValue, stats.RiskLevel, stats.SolvencyRatio)
			fmt.Fprintln(c.Root().Writer, uc.Explain(ctx, ds.Member))
			return nil
		},
	}
}
