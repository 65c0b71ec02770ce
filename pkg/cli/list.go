package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func listCommand() *cli.Command {
	var (
		cfg     config
		ownerID string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "owner",
			Aliases:     []string{"o"},
			Usage:       "Member ID whose claims to list",
			Sources:     cli.EnvVars("COVENA_OWNER_ID"),
			Destination: &ownerID,
			Required:    true,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "list",
		Usage: "List the claims of one member, newest first",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogger(ctx)

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}

			claims, err := repo.ListClaimsByOwner(ctx, ownerID)
			if err != nil {
				return goerr.Wrap(err, "failed to list claims")
			}

			for _, claim := range claims {
				fmt.Fprintf(c.Root().Writer, "%s\t%s\t$%.2f\t%s\n",
					claim.ID, claim.Category, claim.Amount, claim.Status)
			}
			return nil
		},
	}
}
