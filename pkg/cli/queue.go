package cli

import (
	"context"
	"fmt"

	"github.com/covena/covena/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func queueCommand() *cli.Command {
	var (
		cfg     config
		pending bool
	)

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "pending",
			Usage:       "Only show claims awaiting review",
			Destination: &pending,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "queue",
		Usage: "Show the global claims processing queue",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogger(ctx)

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}

			claims, err := repo.ListQueue(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to list claim queue")
			}

			for _, claim := range claims {
				if pending && claim.Status != model.StatusPendingReview {
					continue
				}
				owner := claim.OwnerID
				if claim.OwnerName != "" {
					owner = fmt.Sprintf("%s (%s)", claim.OwnerName, claim.OwnerID)
				}
				fmt.Fprintf(c.Root().Writer, "%s\t%s\t%s\t$%.2f\t%s\n",
					claim.ID, owner, claim.Category, claim.Amount, claim.Status)
			}
			return nil
		},
	}
}
