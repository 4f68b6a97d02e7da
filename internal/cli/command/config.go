package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/idmesh-go/internal/cli/output"
	"github.com/yndnr/idmesh-go/internal/server/config"
)

var roleFlag = &cli.StringFlag{
	Name:  "role",
	Usage: "Node role to apply (backend, frontend); defaults to node.role",
}

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Inspect node configuration",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the merged configuration with secrets masked",
				Flags:  []cli.Flag{roleFlag},
				Action: configShow,
			},
			{
				Name:   "validate",
				Usage:  "Validate the merged configuration",
				Flags:  []cli.Flag{roleFlag},
				Action: configValidate,
			},
		},
	}
}

func configShow(c *cli.Context) error {
	cfg, err := loadConfig(ParseGlobalFlags(c), c.String("role"))
	if err != nil {
		return err
	}
	cfg = config.Sanitize(cfg)

	if output.Format(c.String("output")) == output.FormatTable {
		return render(c, config.Flatten(cfg))
	}
	return render(c, config.Nested(cfg))
}

func configValidate(c *cli.Context) error {
	cfg, err := loadConfig(ParseGlobalFlags(c), c.String("role"))
	if err != nil {
		return err
	}
	if err := config.Verify(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "configuration is valid (role %s)\n", cfg.Node.Role)
	return nil
}
