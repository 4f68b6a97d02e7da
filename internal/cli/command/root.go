package command

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/idmesh-go/internal/cli/connection"
	"github.com/yndnr/idmesh-go/internal/cli/output"
	"github.com/yndnr/idmesh-go/internal/infra/buildinfo"
	"github.com/yndnr/idmesh-go/internal/server/config"
)

// DefaultServer is the frontend address client commands talk to.
const DefaultServer = config.DefaultHTTPAddr

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "idmesh-node",
		Usage:   "Run and operate idmesh cluster nodes",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			NodeCommand(config.RoleBackend),
			NodeCommand(config.RoleFrontend),
			ConfigCommand(),
			IDsCommand(),
			AccountsCommand(),
			ClusterCommand(),
			ResetCommand(),
			LocalCommand(),
			VersionCommand(),
		},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to the node configuration file",
			EnvVars: []string{"IDMESH_CONFIG"},
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Override log.level (debug, info, warn, error)",
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "Override log.format (json, text)",
		},
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "Frontend HTTP address for client commands",
			EnvVars: []string{"IDMESH_SERVER"},
			Value:   DefaultServer,
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Request timeout for client commands",
			Value: connection.DefaultTimeout,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			Value:   string(output.FormatTable),
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
	}
}

// GlobalFlags are the flags shared by every command.
type GlobalFlags struct {
	Config    string
	LogLevel  string
	LogFormat string

	Server  string
	Timeout time.Duration

	Output string
	Wide   bool
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		Config:    c.String("config"),
		LogLevel:  c.String("log-level"),
		LogFormat: c.String("log-format"),
		Server:    c.String("server"),
		Timeout:   c.Duration("timeout"),
		Output:    c.String("output"),
		Wide:      c.Bool("wide"),
	}
}

func newClient(c *cli.Context) *connection.HTTPClient {
	flags := ParseGlobalFlags(c)
	return connection.NewHTTPClient(flags.Server, flags.Timeout)
}

// render writes data to the app writer in the selected format.
func render(c *cli.Context, data any) error {
	flags := ParseGlobalFlags(c)
	switch output.Format(flags.Output) {
	case output.FormatTable, output.FormatJSON, output.FormatYAML:
	default:
		return fmt.Errorf("unknown output format %q", flags.Output)
	}
	return output.NewFormatter(output.Format(flags.Output), flags.Wide).Format(c.App.Writer, data)
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
