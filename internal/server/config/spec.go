package config

import "time"

// NodeConfig is the root configuration of idmesh-node.
type NodeConfig struct {
	Node       NodeSection       `koanf:"node"`
	Cluster    ClusterSection    `koanf:"cluster"`
	HTTP       HTTPSection       `koanf:"http"`
	Frontend   FrontendSection   `koanf:"frontend"`
	Proxy      ProxySection      `koanf:"proxy"`
	Supervisor SupervisorSection `koanf:"supervisor"`
	Reset      ResetSection      `koanf:"reset"`
	Ledger     LedgerSection     `koanf:"ledger"`
	Storage    StorageSection    `koanf:"storage"`
	Log        LogSection        `koanf:"log"`
}

// NodeSection identifies the node.
type NodeSection struct {
	// Role is "backend" or "frontend". The CLI command sets it.
	Role string `koanf:"role"`

	// Name is the gossip node name. If empty, one is generated at startup.
	Name string `koanf:"name"`

	// AdminSocket is the Unix socket of the local console. Empty
	// disables it.
	AdminSocket string `koanf:"admin_socket"`
}

// ClusterSection configures gossip and the inter-node transport.
type ClusterSection struct {
	// BindAddr and BindPort are the gossip listen address (TCP and UDP).
	BindAddr string `koanf:"bind_addr"`
	BindPort int    `koanf:"bind_port"`

	// AdvertiseAddr and AdvertisePort override the gossip address peers dial.
	AdvertiseAddr string `koanf:"advertise_addr"`
	AdvertisePort int    `koanf:"advertise_port"`

	// Seeds are gossip addresses of existing members.
	// Format: ["10.0.0.1:7946", "10.0.0.2:7946"]
	Seeds []string `koanf:"seeds"`

	// RemoteAddr is where the message transport listens.
	RemoteAddr string `koanf:"remote_addr"`

	// AdvertiseRemote is the host:port peers send messages to. Defaults
	// to RemoteAddr.
	AdvertiseRemote string `koanf:"advertise_remote"`

	// SecretKey is a base64 gossip encryption key of 16, 24 or 32 bytes.
	SecretKey string `koanf:"secret_key"`

	// RequestTimeout bounds one message delivery to a peer.
	RequestTimeout time.Duration `koanf:"request_timeout"`
}

// RemoteHost returns the host units of this node are addressed by.
func (c ClusterSection) RemoteHost() string {
	if c.AdvertiseRemote != "" {
		return c.AdvertiseRemote
	}
	return c.RemoteAddr
}

// HTTPSection configures the frontend HTTP API.
type HTTPSection struct {
	Addr string `koanf:"addr"`

	// RateLimit is the sustained requests per second allowed per client
	// IP. Zero disables limiting.
	RateLimit float64 `koanf:"rate_limit"`
	Burst     int     `koanf:"burst"`

	// AdminAllowList restricts /admin/v1/* to these IPs or CIDRs.
	// Empty means no restriction.
	AdminAllowList []string `koanf:"admin_allow_list"`
}

// FrontendSection configures the frontend unit tree.
type FrontendSection struct {
	// IDPool is the capacity of each ID cache.
	IDPool int `koanf:"id_pool"`

	// IDCachePool is the number of ID caches behind the router.
	IDCachePool int `koanf:"id_cache_pool"`

	// AskTimeout bounds how long an HTTP request waits for an ID.
	AskTimeout time.Duration `koanf:"ask_timeout"`

	// CreationTimeout bounds the creation of each frontend unit.
	CreationTimeout time.Duration `koanf:"creation_timeout"`
}

// ProxySection configures discovery proxies.
type ProxySection struct {
	// MaxBacklog caps messages buffered while unbound. Zero is unbounded.
	MaxBacklog int `koanf:"max_backlog"`
}

// SupervisorSection configures the fault budget of supervised units.
type SupervisorSection struct {
	MaxFaults int           `koanf:"max_faults"`
	Window    time.Duration `koanf:"window"`
}

// ResetSection configures the reset coordinator.
type ResetSection struct {
	// Delay is how long the coordinator waits before acknowledging.
	Delay time.Duration `koanf:"delay"`
}

// LedgerSection configures ledger batching on the backend.
type LedgerSection struct {
	Interval  time.Duration `koanf:"interval"`
	BatchSize int           `koanf:"batch_size"`
}

// StorageSection configures persistence.
type StorageSection struct {
	// DataDir holds the badger database. Empty keeps the watermark and
	// ledger journal in memory.
	DataDir string `koanf:"data_dir"`

	// GCInterval is the period of value log garbage collection.
	GCInterval time.Duration `koanf:"gc_interval"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
