package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/covena/covena/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func showCommand() *cli.Command {
	var cfg config

	flags := globalFlags(&cfg)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:      "show",
		Usage:     "Show one claim with its advisory",
		ArgsUsage: "<claim-id>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() == 0 {
				return goerr.New("claim-id is required")
			}
			ctx = cfg.setupLogger(ctx)

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}

			claim, err := repo.GetClaim(ctx, model.ClaimID(c.Args().Get(0)))
			if err != nil {
				return goerr.Wrap(err, "failed to get claim")
			}

			printClaim(c.Root().Writer, claim)
			return nil
		},
	}
}

func printClaim(w io.Writer, claim *model.Claim) {
	fmt.Fprintf(w, "ID:          %s\n", claim.ID)
	fmt.Fprintf(w, "Owner:       %s", claim.OwnerID)
	if claim.OwnerName != "" {
		fmt.Fprintf(w, " (%s)", claim.OwnerName)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Category:    %s\n", claim.Category)
	fmt.Fprintf(w, "Amount:      $%.2f\n", claim.Amount)
	fmt.Fprintf(w, "Status:      %s\n", claim.Status)
	fmt.Fprintf(w, "Filed:       %s\n", claim.CreatedAt.Format("2006-01-02"))
	fmt.Fprintf(w, "Description: %s\n", claim.Description)
	if len(claim.Attachments) > 0 {
		fmt.Fprintf(w, "Attachments: %s\n", strings.Join(claim.Attachments, ", "))
	}
	if claim.AdvisoryText != "" {
		fmt.Fprintf(w, "\nAI Adjuster Evaluation:\n%s\n", claim.AdvisoryText)
	}
}
