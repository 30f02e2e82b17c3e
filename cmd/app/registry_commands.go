package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/keygrid/keygrid/cmd/app/commands"
	"github.com/keygrid/keygrid/internal/app"
	"github.com/keygrid/keygrid/internal/config"
)

func getRegistryCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "register-device",
			Usage: "Add a device to the authority whitelist",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "address",
					Aliases:  []string{"a"},
					Required: true,
					Usage:    "Device address",
				},
				&cli.StringFlag{
					Name:    "owner",
					Aliases: []string{"o"},
					Value:   "",
					Usage:   "Owner address written to the device account",
				},
				&cli.StringFlag{
					Name:  "dapp",
					Value: "",
					Usage: "Dapp address written to the device account",
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

				registry, err := container.RegistryUseCase()
				if err != nil {
					return err
				}

				return commands.RunRegisterDevice(
					ctx,
					registry,
					container.Logger(),
					commands.DefaultWriter(),
					cmd.String("address"),
					cmd.String("owner"),
					cmd.String("dapp"),
					cmd.String("format"),
				)
			},
		},
	}
}
