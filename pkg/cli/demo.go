package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/covena/covena/pkg/adapter"
	"github.com/covena/covena/pkg/advisory"
	"github.com/covena/covena/pkg/model"
	"github.com/covena/covena/pkg/repository"
	"github.com/covena/covena/pkg/seed"
	claimuc "github.com/covena/covena/pkg/usecase/claim"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"google.golang.org/genai"
)

// offlineGemini always fails, forcing the advisory fallback path. The
// demo stays runnable without any cloud credentials.
type offlineGemini struct{}

func (offlineGemini) GenerateContent(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return nil, goerr.New("advisory service not configured")
}

func demoCommand() *cli.Command {
	var cfg config

	flags := globalFlags(&cfg)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "demo",
		Usage: "Run the full claim lifecycle against an in-memory pool",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogger(ctx)
			w := c.Root().Writer

			var gemini adapter.Gemini
			if g, err := cfg.newGemini(ctx); err == nil {
				gemini = g
			} else {
				fmt.Fprintln(w, "Gemini is not configured; advisory text falls back to the canned response.")
				gemini = offlineGemini{}
			}
			advisor := advisory.New(gemini, advisory.WithTimeout(cfg.advisoryTimeout))

			engine, err := cfg.newPolicy(ctx)
			if err != nil {
				return err
			}

			repo := repository.NewMemory()
			ds, err := seed.Demo()
			if err != nil {
				return goerr.Wrap(err, "failed to load demo dataset")
			}
			if err := ds.Apply(ctx, repo); err != nil {
				return err
			}

			uc := claimuc.New(repo, advisor, engine)
			defer uc.Close()

			fmt.Fprintf(w, "Seeded %d claims into the pool.\n\n", len(ds.Claims))

			claim, err := uc.Submit(ctx, claimuc.SubmitInput{
				OwnerID:     ds.Member.ID,
				OwnerName:   ds.Member.Name,
				Category:    model.CategoryWaterDamage,
				Amount:      1200,
				Description: "Pipe burst in the kitchen; hardwood floor soaked overnight.",
			})
			if err != nil {
				return goerr.Wrap(err, "failed to submit demo claim")
			}
			fmt.Fprintf(w, "Submitted %s (status: %s)\n", claim.ID, claim.Status)

			sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond,
				spinner.WithWriter(os.Stderr))
			sp.Suffix = " AI adjuster analyzing..."
			sp.Start()
			uc.Wait()
			final := watchClaim(ctx, uc, claim.ID, 10*time.Second)
			sp.Stop()

			if final != nil {
				fmt.Fprintf(w, "Resolved %s (status: %s)\n\n", final.ID, final.Status)
				if final.AdvisoryText != "" {
					fmt.Fprintf(w, "AI Adjuster Evaluation:\n%s\n\n", final.AdvisoryText)
				}
			}

			// Admin side: approve the pending claim, then show that acting
			// on a claim outside pending_review is refused.
			if err := uc.Approve(ctx, "CLM-902", "admin-01"); err != nil {
				return err
			}
			fmt.Fprintln(w, "Approved CLM-902 from the review queue.")

			if err := uc.Approve(ctx, "CLM-903", "admin-01"); err != nil {
				fmt.Fprintf(w, "Approving CLM-903 refused as expected: %v\n\n", err)
			}

			fmt.Fprintln(w, "Final queue:")
			queue, err := uc.Queue(ctx)
			if err != nil {
				return err
			}
			for _, q := range queue {
				fmt.Fprintf(w, "%s\t%s\t$%.2f\t%s\n", q.ID, q.Category, q.Amount, q.Status)
			}
			return nil
		},
	}
}
