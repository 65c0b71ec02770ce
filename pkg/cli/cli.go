package cli

import (
	"context"

	"github.com/urfave/cli/v3"
)

type Error struct {
	Code    int
	Message string
}

func Run(ctx context.Context, argv []string) *Error {
	cmd := &cli.Command{
		Name:  "covena",
		Usage: "P2P mutual-insurance claims core",
		Commands: []*cli.Command{
			submitCommand(),
			intakeCommand(),
			listCommand(),
			queueCommand(),
			showCommand(),
			approveCommand(),
			rejectCommand(),
			explainCommand(),
			demoCommand(),
		},
	}

	if err := cmd.Run(ctx, argv); err != nil {
		return &Error{
			Code:    1,
			Message: err.Error(),
		}
	}

	return nil
}
