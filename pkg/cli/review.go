package cli

import (
	"context"
	"fmt"

	"github.com/covena/covena/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func approveCommand() *cli.Command {
	var (
		cfg   config
		actor string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "actor",
			Usage:       "Administrator performing the action",
			Value:       "admin",
			Sources:     cli.EnvVars("COVENA_ACTOR"),
			Destination: &actor,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)
	flags = append(flags, integrationFlags(&cfg)...)

	return &cli.Command{
		Name:      "approve",
		Usage:     "Approve a claim awaiting review",
		ArgsUsage: "<claim-id>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() == 0 {
				return goerr.New("claim-id is required")
			}
			ctx = cfg.setupLogger(ctx)

			uc, err := cfg.newUseCase(ctx)
			if err != nil {
				return err
			}
			defer uc.Close()

			id := model.ClaimID(c.Args().Get(0))
			if err := uc.Approve(ctx, id, actor); err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "Claim approved: %s\n", id)
			return nil
		},
	}
}

func rejectCommand() *cli.Command {
	var (
		cfg   config
		actor string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "actor",
			Usage:       "Administrator performing the action",
			Value:       "admin",
			Sources:     cli.EnvVars("COVENA_ACTOR"),
			Destination: &actor,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)
	flags = append(flags, integrationFlags(&cfg)...)

	return &cli.Command{
		Name:      "reject",
		Usage:     "Reject a claim awaiting review",
		ArgsUsage: "<claim-id>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() == 0 {
				return goerr.New("claim-id is required")
			}
			ctx = cfg.setupLogger(ctx)

			uc, err := cfg.newUseCase(ctx)
			if err != nil {
				return err
			}
			defer uc.Close()

			id := model.ClaimID(c.Args().Get(0))
			if err := uc.Reject(ctx, id, actor); err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "Claim rejected: %s\n", id)
			return nil
		},
	}
}
