package config

import "time"

// Node roles.
const (
	RoleBackend  = "backend"
	RoleFrontend = "frontend"
)

// Default configuration values.
const (
	DefaultBindAddr       = "0.0.0.0"
	DefaultBindPort       = 7946
	DefaultRemoteAddr     = "127.0.0.1:7400"
	DefaultRequestTimeout = 5 * time.Second
	DefaultHTTPAddr       = "127.0.0.1:8080"

	DefaultIDPool          = 64
	DefaultIDCachePool     = 8
	DefaultAskTimeout      = 5 * time.Second
	DefaultCreationTimeout = 60 * time.Second

	DefaultMaxFaults = 10
	DefaultWindow    = time.Minute

	DefaultResetDelay = 5 * time.Second

	DefaultLedgerInterval  = 1000 * time.Millisecond
	DefaultLedgerBatchSize = 10

	DefaultGCInterval = 10 * time.Minute

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default node configuration.
func Default() *NodeConfig {
	return &NodeConfig{
		Cluster: ClusterSection{
			BindAddr:       DefaultBindAddr,
			BindPort:       DefaultBindPort,
			RemoteAddr:     DefaultRemoteAddr,
			RequestTimeout: DefaultRequestTimeout,
		},
		HTTP: HTTPSection{
			Addr: DefaultHTTPAddr,
		},
		Frontend: FrontendSection{
			IDPool:          DefaultIDPool,
			IDCachePool:     DefaultIDCachePool,
			AskTimeout:      DefaultAskTimeout,
			CreationTimeout: DefaultCreationTimeout,
		},
		Supervisor: SupervisorSection{
			MaxFaults: DefaultMaxFaults,
			Window:    DefaultWindow,
		},
		Reset: ResetSection{
			Delay: DefaultResetDelay,
		},
		Ledger: LedgerSection{
			Interval:  DefaultLedgerInterval,
			BatchSize: DefaultLedgerBatchSize,
		},
		Storage: StorageSection{
			GCInterval: DefaultGCInterval,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
