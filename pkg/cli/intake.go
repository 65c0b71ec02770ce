package cli

import (
	"context"
	"fmt"

	"github.com/covena/covena/pkg/model"
	claimuc "github.com/covena/covena/pkg/usecase/claim"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func intakeCommand() *cli.Command {
	var (
		cfg         config
		ownerID     string
		ownerName   string
		category    string
		amount      float64
		description string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "owner",
			Aliases:     []string{"o"},
			Usage:       "Member ID the claim belongs to",
			Destination: &ownerID,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "owner-name",
			Usage:       "Display name of the member",
			Destination: &ownerName,
		},
		&cli.StringFlag{
			Name:        "category",
			Aliases:     []string{"c"},
			Usage:       "Claim category",
			Value:       string(model.CategoryWaterDamage),
			Destination: &category,
		},
		&cli.FloatFlag{
			Name:        "amount",
			Aliases:     []string{"a"},
			Usage:       "Requested amount in USD",
			Destination: &amount,
		},
		&cli.StringFlag{
			Name:        "description",
			Aliases:     []string{"m"},
			Usage:       "Claim narrative",
			Destination: &description,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)
	flags = append(flags, integrationFlags(&cfg)...)

	return &cli.Command{
		Name:  "intake",
		Usage: "File a claim directly into the administrative review queue",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogger(ctx)

			uc, err := cfg.newUseCase(ctx)
			if err != nil {
				return err
			}
			defer uc.Close()

			claim, err := uc.Intake(ctx, claimuc.IntakeInput{
				OwnerID:     ownerID,
				OwnerName:   ownerName,
				Category:    model.ClaimCategory(category),
				Amount:      amount,
				Description: description,
			})
			if err != nil {
				return goerr.Wrap(err, "failed to intake claim")
			}

			uc.Wait()
			fmt.Fprintf(c.Root().Writer, "Claim queued for review: %s\n", claim.ID)
			return nil
		},
	}
}
