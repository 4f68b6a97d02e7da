package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/idmesh-go/internal/cli/output"
	"github.com/yndnr/idmesh-go/internal/infra/buildinfo"
)

// VersionCommand prints build information.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print build information",
		Action: func(c *cli.Context) error {
			if output.Format(c.String("output")) == output.FormatTable {
				fmt.Fprintf(c.App.Writer, "idmesh-node %s\n", buildinfo.String())
				return nil
			}
			return render(c, buildinfo.Get())
		},
	}
}
