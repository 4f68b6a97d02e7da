package command

import (
	"fmt"
	"strconv"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/idmesh-go/internal/cli/output"
	"github.com/yndnr/idmesh-go/internal/server/httpserver/handler"
)

// IDsCommand returns the ids subcommand group.
func IDsCommand() *cli.Command {
	return &cli.Command{
		Name:  "ids",
		Usage: "Fetch unique IDs from a frontend",
		Subcommands: []*cli.Command{
			{
				Name:  "next",
				Usage: "Fetch the next IDs",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "count",
						Aliases: []string{"n"},
						Usage:   "Number of IDs to fetch",
						Value:   1,
					},
				},
				Action: idsNext,
			},
		},
	}
}

type idList []handler.IDResponse

func (l idList) Table(bool) *output.Table {
	t := &output.Table{Headers: []string{"ID"}}
	for _, id := range l {
		t.AddRow(id.ID)
	}
	return t
}

func idsNext(c *cli.Context) error {
	count := c.Int("count")
	if count < 1 {
		return fmt.Errorf("count must be at least 1, got %d", count)
	}

	client := newClient(c)
	ids := make(idList, 0, count)
	for i := 0; i < count; i++ {
		var id handler.IDResponse
		if err := client.Get(c.Context, "/ids/next", &id); err != nil {
			return err
		}
		ids = append(ids, id)
	}
	return render(c, ids)
}

// AccountsCommand returns the accounts subcommand group.
func AccountsCommand() *cli.Command {
	return &cli.Command{
		Name:  "accounts",
		Usage: "Manage accounts",
		Subcommands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create an account",
				Flags: []cli.Flag{
					&cli.Int64Flag{
						Name:  "balance",
						Usage: "Opening balance",
					},
				},
				Action: accountsCreate,
			},
		},
	}
}

type account handler.AccountResponse

func (a account) Table(bool) *output.Table {
	return &output.Table{
		Headers: []string{"ACCOUNT_ID", "BALANCE"},
		Rows:    [][]string{{a.AccountID, strconv.FormatInt(a.Balance, 10)}},
	}
}

func accountsCreate(c *cli.Context) error {
	req := handler.CreateAccountRequest{Balance: c.Int64("balance")}
	var resp account
	if err := newClient(c).Post(c.Context, "/accounts", req, &resp); err != nil {
		return err
	}
	return render(c, resp)
}

// ClusterCommand returns the cluster subcommand group.
func ClusterCommand() *cli.Command {
	return &cli.Command{
		Name:  "cluster",
		Usage: "Inspect the cluster",
		Subcommands: []*cli.Command{
			{
				Name:   "nodes",
				Usage:  "List cluster members as the frontend sees them",
				Action: clusterNodes,
			},
		},
	}
}

type nodeList []handler.NodeResponse

func (l nodeList) Table(wide bool) *output.Table {
	t := &output.Table{Headers: []string{"NAME", "STATUS", "ROLES", "ADDRESS"}}
	if wide {
		t.Headers = append(t.Headers, "UID", "LOCAL")
	}
	for _, n := range l {
		row := []string{n.Name, n.Status, output.Cell(n.Roles), n.Address}
		if wide {
			row = append(row, n.UID, strconv.FormatBool(n.Local))
		}
		t.AddRow(row...)
	}
	return t
}

func clusterNodes(c *cli.Context) error {
	var resp handler.ClusterNodesResponse
	if err := newClient(c).Get(c.Context, "/admin/v1/cluster/nodes", &resp); err != nil {
		return err
	}
	return render(c, nodeList(resp.Nodes))
}

// ResetCommand resets the frontend ID pipeline.
func ResetCommand() *cli.Command {
	return &cli.Command{
		Name:   "reset",
		Usage:  "Reset the frontend and wait for the acknowledgement",
		Action: reset,
	}
}

type resetResult handler.ResetResponse

func (r resetResult) Table(bool) *output.Table {
	return &output.Table{
		Headers: []string{"RESET", "ACKNOWLEDGED_AT"},
		Rows:    [][]string{{strconv.FormatBool(r.Reset), r.AcknowledgedAt.Format(time.RFC3339)}},
	}
}

func reset(c *cli.Context) error {
	var resp resetResult
	if err := newClient(c).Post(c.Context, "/admin/v1/reset", nil, &resp); err != nil {
		return err
	}
	return render(c, resp)
}
