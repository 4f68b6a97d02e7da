package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/idmesh-go/internal/cli/connection"
)

const localTimeout = 10 * time.Second

// LocalCommand sends a command to the local console of a node on this
// host.
func LocalCommand() *cli.Command {
	return &cli.Command{
		Name:      "local",
		Usage:     "Send a command to a node's local console (status, members, loglevel, shutdown)",
		ArgsUsage: "COMMAND [ARGS...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "socket",
				Usage: "Console socket; defaults to node.admin_socket of the loaded config",
			},
		},
		Action: runLocal,
	}
}

func runLocal(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("missing console command")
	}

	socket := c.String("socket")
	if socket == "" {
		cfg, err := loadConfig(ParseGlobalFlags(c), "")
		if err != nil {
			return err
		}
		socket = cfg.Node.AdminSocket
	}
	if socket == "" {
		return errors.New("no console socket: pass --socket or set node.admin_socket")
	}

	ctx, cancel := context.WithTimeout(c.Context, localTimeout)
	defer cancel()
	reply, err := connection.SendLocal(ctx, socket, c.Args().Slice()...)
	if err != nil {
		return err
	}
	fmt.Fprint(c.App.Writer, reply)
	return nil
}
