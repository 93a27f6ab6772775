package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/screening/cmd/app/commands"
	"github.com/allisson/screening/internal/app"
	"github.com/allisson/screening/internal/config"
)

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "wrap-secret",
			Usage: "Encrypt a boot secret with the KMS key for storage in the environment",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "kms-key-uri",
					Usage: "KMS key URI (defaults to KMS_KEY_URI)",
				},
				&cli.StringFlag{
					Name:  "secret",
					Usage: "Secret to wrap ('-' or omitted reads it from stdin)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				kmsKeyURI := cmd.String("kms-key-uri")
				if kmsKeyURI == "" {
					kmsKeyURI = cfg.KMSKeyURI
				}

				return commands.RunWrapSecret(
					ctx,
					container.KMSService(),
					container.Logger(),
					kmsKeyURI,
					cmd.String("secret"),
					commands.DefaultIO(),
				)
			},
		},
		{
			Name:  "encrypt-field",
			Usage: "Encrypt a sensitive field value with FIELD_ENCRYPTION_SECRET",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "value",
					Usage: "Plaintext value ('-' or omitted reads it from stdin)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				fieldCipher, err := container.FieldCipher()
				if err != nil {
					return err
				}

				return commands.RunEncryptField(fieldCipher, cmd.String("value"), commands.DefaultIO())
			},
		},
		{
			Name:  "decrypt-field",
			Usage: "Decrypt a stored sensitive field value",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "value",
					Usage: "Stored ivHex:cipherHex value ('-' or omitted reads it from stdin)",
				},
				&cli.BoolFlag{
					Name:  "mask",
					Usage: "Print the masked form (last three digits only)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				fieldCipher, err := container.FieldCipher()
				if err != nil {
					return err
				}

				return commands.RunDecryptField(
					fieldCipher,
					cmd.String("value"),
					cmd.Bool("mask"),
					commands.DefaultIO(),
				)
			},
		},
	}
}
