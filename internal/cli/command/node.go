package command

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/fx"

	"github.com/yndnr/idmesh-go/internal/actor"
	"github.com/yndnr/idmesh-go/internal/infra/buildinfo"
	"github.com/yndnr/idmesh-go/internal/infra/shutdown"
	"github.com/yndnr/idmesh-go/internal/node"
	"github.com/yndnr/idmesh-go/internal/server/config"
	"github.com/yndnr/idmesh-go/internal/telemetry/logger"
)

const shutdownTimeout = 30 * time.Second

// NodeCommand runs a node in role until a signal arrives or its units
// fail.
func NodeCommand(role string) *cli.Command {
	return &cli.Command{
		Name:   role,
		Usage:  fmt.Sprintf("Run a %s node", role),
		Action: runNode(role),
	}
}

func runNode(role string) cli.ActionFunc {
	return func(c *cli.Context) error {
		flags := ParseGlobalFlags(c)
		src := configSource(flags, role)
		cfg, err := loadConfig(flags, role)
		if err != nil {
			return err
		}
		if err := config.Verify(cfg); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		log, err := logger.New(logger.Config{
			Level:  cfg.Log.Level,
			Format: cfg.Log.Format,
			Output: os.Stdout,
		})
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		logger.SetDefault(log)

		info := buildinfo.Get()
		log.Info("starting idmesh-node",
			"role", role,
			"version", info.Version,
			"commit", info.Commit,
			"config", flags.Config)

		sd := shutdown.NewHandler(shutdownTimeout)
		var sys *actor.System
		app := fx.New(
			node.Options(cfg, src, log, sd),
			fx.Populate(&sys),
		)
		if err := app.Err(); err != nil {
			return fmt.Errorf("build node: %w", err)
		}

		startCtx, cancel := context.WithTimeout(c.Context, app.StartTimeout())
		defer cancel()
		if err := app.Start(startCtx); err != nil {
			return fmt.Errorf("start node: %w", err)
		}
		sd.OnShutdown(app.Stop)

		log.Info("node started, press Ctrl+C to stop", "name", cfg.Node.Name)
		reason, err := sd.Wait(c.Context)
		if err != nil {
			log.Error("shutdown error", "error", err)
			return err
		}
		log.Info("node stopped", "reason", reason)

		if err := sys.Err(); err != nil {
			return fmt.Errorf("node failed: %w", err)
		}
		return nil
	}
}

// configSource names the config file and the command-line overrides:
// role, log level and log format. role may be empty.
func configSource(flags *GlobalFlags, role string) node.ConfigSource {
	overrides := make(map[string]any)
	if role != "" {
		overrides["node.role"] = role
	}
	if flags.LogLevel != "" {
		overrides["log.level"] = flags.LogLevel
	}
	if flags.LogFormat != "" {
		overrides["log.format"] = flags.LogFormat
	}
	return node.ConfigSource{Path: flags.Config, Overrides: overrides}
}

// loadConfig merges defaults, the config file, IDMESH_* environment
// variables and the command line.
func loadConfig(flags *GlobalFlags, role string) (*config.NodeConfig, error) {
	cfg, err := configSource(flags, role).Reload()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
