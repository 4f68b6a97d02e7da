package config

import (
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/idmesh-go/internal/server/clusterserver"
	"github.com/yndnr/idmesh-go/internal/telemetry/logger"
)

// ToDiscoveryConfig converts NodeConfig to clusterserver.DiscoveryConfig.
//
// This handles node name generation and field mapping.
func ToDiscoveryConfig(cfg *NodeConfig, log logger.Logger) (clusterserver.DiscoveryConfig, error) {
	if cfg == nil {
		return clusterserver.DiscoveryConfig{}, fmt.Errorf("node config is nil")
	}

	name := cfg.Node.Name
	if name == "" {
		name = generateNodeName(cfg.Node.Role)
		log.Info("generated node name", "node", name)
	}

	var key []byte
	if cfg.Cluster.SecretKey != "" {
		k, err := decodeSecretKey(cfg.Cluster.SecretKey)
		if err != nil {
			return clusterserver.DiscoveryConfig{}, err
		}
		key = k
	}

	return clusterserver.DiscoveryConfig{
		NodeName:      name,
		BindAddr:      cfg.Cluster.BindAddr,
		BindPort:      cfg.Cluster.BindPort,
		AdvertiseAddr: cfg.Cluster.AdvertiseAddr,
		AdvertisePort: cfg.Cluster.AdvertisePort,
		Seeds:         cfg.Cluster.Seeds,
		Roles:         []string{cfg.Node.Role},
		Address:       cfg.Cluster.RemoteHost(),
		SecretKey:     key,
		Logger:        log,
	}, nil
}

// generateNodeName returns "<role>-<ulid>".
func generateNodeName(role string) string {
	if role == "" {
		role = "node"
	}
	return role + "-" + strings.ToLower(ulid.Make().String())
}
