package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/briandowns/spinner"
	"github.com/covena/covena/pkg/model"
	claimuc "github.com/covena/covena/pkg/usecase/claim"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func submitCommand() *cli.Command {
	var (
		cfg         config
		ownerID     string
		ownerName   string
		category    string
		amount      float64
		description string
		attachments []string
		wait        time.Duration
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "owner",
			Aliases:     []string{"o"},
			Usage:       "Member ID submitting the claim",
			Sources:     cli.EnvVars("COVENA_OWNER_ID"),
			Destination: &ownerID,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "owner-name",
			Usage:       "Display name of the member",
			Sources:     cli.EnvVars("COVENA_OWNER_NAME"),
			Destination: &ownerName,
		},
		&cli.StringFlag{
			Name:        "category",
			Aliases:     []string{"c"},
			Usage:       "Claim category (water_damage, electronic_failure, fire_smoke, structural_damage, theft)",
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
			Usage:       "What happened: cause, date, items affected",
			Destination: &description,
		},
		&cli.StringSliceFlag{
			Name:        "attach",
			Usage:       "Path to an evidence file (repeatable, requires --bucket)",
			Destination: &attachments,
		},
		&cli.DurationFlag{
			Name:        "wait",
			Usage:       "How long to watch for the automatic resolution (0: return immediately)",
			Value:       10 * time.Second,
			Destination: &wait,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)
	flags = append(flags, integrationFlags(&cfg)...)

	return &cli.Command{
		Name:  "submit",
		Usage: "Submit a new claim to the pool",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogger(ctx)

			uc, err := cfg.newUseCase(ctx)
			if err != nil {
				return err
			}
			defer uc.Close()

			input := claimuc.SubmitInput{
				OwnerID:     ownerID,
				OwnerName:   ownerName,
				Category:    model.ClaimCategory(category),
				Amount:      amount,
				Description: description,
			}

			files := make([]*os.File, 0, len(attachments))
			defer func() {
				for _, f := range files {
					f.Close()
				}
			}()
			for _, path := range attachments {
				f, err := os.Open(path)
				if err != nil {
					return goerr.Wrap(err, "failed to open attachment", goerr.V("path", path))
				}
				files = append(files, f)
				input.Attachments = append(input.Attachments, claimuc.Attachment{
					Name: filepath.Base(path),
					Data: f,
				})
			}

			claim, err := uc.Submit(ctx, input)
			if err != nil {
				return goerr.Wrap(err, "failed to submit claim")
			}

			fmt.Fprintf(c.Root().Writer, "Claim submitted: %s (status: %s)\n", claim.ID, claim.Status)

			sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond,
				spinner.WithWriter(os.Stderr))
			sp.Suffix = " AI adjuster analyzing..."
			sp.Start()

			// Let the concurrent advisory fetch settle, then watch for the
			// scheduled resolution.
			uc.Wait()
			final := watchClaim(ctx, uc, claim.ID, wait)
			sp.Stop()

			if final == nil {
				final = claim
			}
			printClaim(c.Root().Writer, final)
			return nil
		},
	}
}

// watchClaim polls until the claim leaves analyzing or the wait budget
// runs out. Returns the last observed state.
func watchClaim(ctx context.Context, uc *claimuc.UseCase, id model.ClaimID, wait time.Duration) *model.Claim {
	deadline := time.Now().Add(wait)
	var last *model.Claim
	for {
		claim, err := uc.Get(ctx, id)
		if err == nil {
			last = claim
			if claim.Status != model.StatusAnalyzing {
				return claim
			}
		}
		if wait <= 0 || time.Now().After(deadline) {
			return last
		}
		select {
		case <-ctx.Done():
			return last
		case <-time.After(500 * time.Millisecond):
		}
	}
}
