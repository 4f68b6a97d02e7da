package localserver

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/yndnr/idmesh-go/internal/core/domain"
	"github.com/yndnr/idmesh-go/internal/telemetry/logger"
)

// Units reports on the local actor system.
type Units interface {
	Units() int
	Err() error
}

// Members reports the membership view.
type Members interface {
	Members() []domain.Member
}

// Trigger starts a graceful shutdown.
type Trigger interface {
	Trigger(reason string)
}

// HandlerConfig configures a Handler.
type HandlerConfig struct {
	Role     string
	Name     string
	Units    Units
	Members  Members
	Shutdown Trigger
}

// Handler handles local management commands.
type Handler struct {
	cfg     HandlerConfig
	started time.Time
}

// NewHandler creates a new Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{cfg: cfg, started: time.Now()}
}

// Execute executes a local management command.
func (h *Handler) Execute(w io.Writer, cmd string, args []string) error {
	switch strings.ToLower(cmd) {
	case "status":
		return h.handleStatus(w)
	case "members":
		return h.handleMembers(w)
	case "loglevel":
		return h.handleLogLevel(w, args)
	case "shutdown":
		return h.handleShutdown(w)
	default:
		_, err := fmt.Fprintf(w, "unknown command: %s\n", cmd)
		return err
	}
}

func (h *Handler) handleStatus(w io.Writer) error {
	state := "running"
	units := 0
	if h.cfg.Units != nil {
		units = h.cfg.Units.Units()
		if err := h.cfg.Units.Err(); err != nil {
			state = "failed: " + err.Error()
		}
	}
	members := 0
	if h.cfg.Members != nil {
		members = len(h.cfg.Members.Members())
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "role\t%s\n", h.cfg.Role)
	fmt.Fprintf(tw, "name\t%s\n", h.cfg.Name)
	fmt.Fprintf(tw, "state\t%s\n", state)
	fmt.Fprintf(tw, "units\t%d\n", units)
	fmt.Fprintf(tw, "members\t%d\n", members)
	fmt.Fprintf(tw, "log_level\t%s\n", logger.GetLevel())
	fmt.Fprintf(tw, "uptime\t%s\n", time.Since(h.started).Truncate(time.Second))
	return tw.Flush()
}

func (h *Handler) handleMembers(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSTATUS\tROLES\tADDRESS")
	if h.cfg.Members != nil {
		for _, m := range h.cfg.Members.Members() {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.Name, m.Status, strings.Join(m.Roles, ","), m.Address)
		}
	}
	return tw.Flush()
}

func (h *Handler) handleLogLevel(w io.Writer, args []string) error {
	if len(args) > 0 {
		switch strings.ToLower(args[0]) {
		case "debug", "info", "warn", "warning", "error":
			logger.SetLevel(args[0])
		default:
			_, err := fmt.Fprintf(w, "invalid log level: %s\n", args[0])
			return err
		}
	}
	_, err := fmt.Fprintf(w, "log level %s\n", logger.GetLevel())
	return err
}

func (h *Handler) handleShutdown(w io.Writer) error {
	if h.cfg.Shutdown == nil {
		_, err := fmt.Fprintln(w, "shutdown not available")
		return err
	}
	if _, err := fmt.Fprintln(w, "shutting down"); err != nil {
		return err
	}
	h.cfg.Shutdown.Trigger("local console shutdown")
	return nil
}
