package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/keygrid/keygrid/cmd/app/commands"
	"github.com/keygrid/keygrid/internal/app"
	"github.com/keygrid/keygrid/internal/config"
)

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "issue-keys",
			Usage: "Issue a batch of capability keys for a device",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "device",
					Aliases:  []string{"d"},
					Required: true,
					Usage:    "Device address the keys are bound to",
				},
				&cli.IntFlag{
					Name:     "valid-to",
					Required: true,
					Usage:    "Key expiry as Unix milliseconds",
				},
				&cli.IntFlag{
					Name:    "amount",
					Aliases: []string{"n"},
					Value:   1,
					Usage:   "Number of keys to issue",
				},
				&cli.StringFlag{
					Name:    "recipient",
					Aliases: []string{"r"},
					Value:   "",
					Usage:   "Address the issued keys are transferred to (omit to keep on authority)",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				batchIssuer, err := container.BatchIssuerUseCase()
				if err != nil {
					return err
				}

				return commands.RunIssueKeys(
					ctx,
					batchIssuer,
					container.Logger(),
					commands.DefaultWriter(),
					cmd.String("device"),
					int64(cmd.Int("valid-to")),
					int(cmd.Int("amount")),
					cmd.String("recipient"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "revoke-key",
			Usage: "Burn a capability key held by the authority account",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "id",
					Aliases:  []string{"i"},
					Required: true,
					Usage:    "Key ID (base58 asset id)",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				issuer, err := container.IssuerUseCase()
				if err != nil {
					return err
				}

				return commands.RunRevokeKey(
					ctx,
					issuer,
					container.Logger(),
					commands.DefaultWriter(),
					cmd.String("id"),
					cmd.String("format"),
				)
			},
		},
	}
}
