package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/screening/cmd/app/commands"
	"github.com/allisson/screening/internal/app"
	"github.com/allisson/screening/internal/config"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the HTTP server",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Run database migrations",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunMigrations(container.Logger(), cfg.DBDriver, cfg.DBConnectionString)
			},
		},
		{
			Name:  "check-permissions",
			Usage: "Validate a role permission table and print the grants or a single decision",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "policy-file",
					Aliases: []string{"p"},
					Usage:   "JSON permission table (defaults to RBAC_POLICY_FILE, then the embedded table)",
				},
				&cli.StringFlag{
					Name:    "role",
					Aliases: []string{"r"},
					Usage:   "Only print this role",
				},
				&cli.StringFlag{
					Name:  "permission",
					Usage: "Check a single resource:action for --role",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				policyFile := cmd.String("policy-file")
				if policyFile == "" {
					policyFile = config.Load().RBACPolicyFile
				}
				return commands.RunCheckPermissions(
					policyFile,
					cmd.String("role"),
					cmd.String("permission"),
					cmd.String("format"),
					commands.DefaultIO(),
				)
			},
		},
	}
}
