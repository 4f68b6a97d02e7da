package config

import (
	"encoding/base64"
	"fmt"
	"net"
	"os"
	"strings"

	"go.uber.org/multierr"
)

// Verify validates the configuration and reports every problem found.
func Verify(cfg *NodeConfig) error {
	var err error
	err = multierr.Append(err, verifyNode(&cfg.Node))
	err = multierr.Append(err, verifyCluster(&cfg.Cluster))
	if cfg.Node.Role == RoleFrontend {
		err = multierr.Append(err, verifyFrontend(cfg))
	}
	err = multierr.Append(err, verifyRuntime(cfg))
	err = multierr.Append(err, verifyStorage(&cfg.Storage))
	err = multierr.Append(err, verifyLog(&cfg.Log))
	return err
}

func verifyNode(cfg *NodeSection) error {
	switch cfg.Role {
	case RoleBackend, RoleFrontend:
		return nil
	case "":
		return fmt.Errorf("node.role is required")
	default:
		return fmt.Errorf("node.role %q: must be %q or %q", cfg.Role, RoleBackend, RoleFrontend)
	}
}

func verifyCluster(cfg *ClusterSection) error {
	var err error
	if cfg.BindPort < 0 || cfg.BindPort > 65535 {
		err = multierr.Append(err, fmt.Errorf("cluster.bind_port %d out of range", cfg.BindPort))
	}
	if cfg.AdvertisePort < 0 || cfg.AdvertisePort > 65535 {
		err = multierr.Append(err, fmt.Errorf("cluster.advertise_port %d out of range", cfg.AdvertisePort))
	}
	if _, _, e := net.SplitHostPort(cfg.RemoteAddr); e != nil {
		err = multierr.Append(err, fmt.Errorf("cluster.remote_addr %q: %w", cfg.RemoteAddr, e))
	}
	if cfg.AdvertiseRemote != "" {
		if _, _, e := net.SplitHostPort(cfg.AdvertiseRemote); e != nil {
			err = multierr.Append(err, fmt.Errorf("cluster.advertise_remote %q: %w", cfg.AdvertiseRemote, e))
		}
	}
	if cfg.SecretKey != "" {
		if _, e := decodeSecretKey(cfg.SecretKey); e != nil {
			err = multierr.Append(err, e)
		}
	}
	if cfg.RequestTimeout <= 0 {
		err = multierr.Append(err, fmt.Errorf("cluster.request_timeout must be positive"))
	}
	return err
}

func verifyFrontend(cfg *NodeConfig) error {
	var err error
	if _, _, e := net.SplitHostPort(cfg.HTTP.Addr); e != nil {
		err = multierr.Append(err, fmt.Errorf("http.addr %q: %w", cfg.HTTP.Addr, e))
	}
	if cfg.HTTP.RateLimit < 0 {
		err = multierr.Append(err, fmt.Errorf("http.rate_limit must not be negative"))
	}
	if cfg.HTTP.RateLimit > 0 && cfg.HTTP.Burst < 1 {
		err = multierr.Append(err, fmt.Errorf("http.burst must be at least 1 when rate_limit is set"))
	}
	for _, entry := range cfg.HTTP.AdminAllowList {
		if !validAllowEntry(entry) {
			err = multierr.Append(err, fmt.Errorf("http.admin_allow_list entry %q is not an IP or CIDR", entry))
		}
	}
	if cfg.Frontend.IDPool < 1 {
		err = multierr.Append(err, fmt.Errorf("frontend.id_pool must be at least 1"))
	}
	if cfg.Frontend.IDCachePool < 1 {
		err = multierr.Append(err, fmt.Errorf("frontend.id_cache_pool must be at least 1"))
	}
	if cfg.Frontend.AskTimeout <= 0 {
		err = multierr.Append(err, fmt.Errorf("frontend.ask_timeout must be positive"))
	}
	if cfg.Frontend.CreationTimeout <= 0 {
		err = multierr.Append(err, fmt.Errorf("frontend.creation_timeout must be positive"))
	}
	if cfg.Proxy.MaxBacklog < 0 {
		err = multierr.Append(err, fmt.Errorf("proxy.max_backlog must not be negative"))
	}
	if cfg.Reset.Delay < 0 {
		err = multierr.Append(err, fmt.Errorf("reset.delay must not be negative"))
	}
	return err
}

func verifyRuntime(cfg *NodeConfig) error {
	var err error
	if cfg.Supervisor.MaxFaults < 0 {
		err = multierr.Append(err, fmt.Errorf("supervisor.max_faults must not be negative"))
	}
	if cfg.Supervisor.Window <= 0 {
		err = multierr.Append(err, fmt.Errorf("supervisor.window must be positive"))
	}
	if cfg.Ledger.Interval <= 0 {
		err = multierr.Append(err, fmt.Errorf("ledger.interval must be positive"))
	}
	if cfg.Ledger.BatchSize < 1 {
		err = multierr.Append(err, fmt.Errorf("ledger.batch_size must be at least 1"))
	}
	return err
}

func verifyStorage(cfg *StorageSection) error {
	if cfg.DataDir == "" {
		return nil
	}
	if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
		return fmt.Errorf("cannot create data directory: %w", err)
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	var err error
	switch strings.ToLower(cfg.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		err = multierr.Append(err, fmt.Errorf("log.level %q is not a level", cfg.Level))
	}
	switch strings.ToLower(cfg.Format) {
	case "json", "text", "console":
	default:
		err = multierr.Append(err, fmt.Errorf("log.format %q: must be json or text", cfg.Format))
	}
	return err
}

func decodeSecretKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("cluster.secret_key: %w", err)
	}
	switch len(key) {
	case 16, 24, 32:
		return key, nil
	default:
		return nil, fmt.Errorf("cluster.secret_key decodes to %d bytes, want 16, 24 or 32", len(key))
	}
}

func validAllowEntry(entry string) bool {
	if strings.Contains(entry, "/") {
		_, _, err := net.ParseCIDR(entry)
		return err == nil
	}
	return net.ParseIP(entry) != nil
}
