package node

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"

	"github.com/yndnr/idmesh-go/internal/actor"
	"github.com/yndnr/idmesh-go/internal/core/domain"
	"github.com/yndnr/idmesh-go/internal/infra/shutdown"
	"github.com/yndnr/idmesh-go/internal/server/config"
	"github.com/yndnr/idmesh-go/internal/storage"
	"github.com/yndnr/idmesh-go/internal/telemetry/logger"
)

func TestOptions_GraphIsComplete(t *testing.T) {
	for _, role := range []string{config.RoleBackend, config.RoleFrontend} {
		t.Run(role, func(t *testing.T) {
			cfg := config.Default()
			cfg.Node.Role = role
			err := fx.ValidateApp(Options(cfg, ConfigSource{}, logger.Discard(), shutdown.NewHandler(time.Second)))
			require.NoError(t, err)
		})
	}
}

func TestStrategy(t *testing.T) {
	cfg := config.Default()
	cfg.Supervisor.MaxFaults = 3
	cfg.Supervisor.Window = 10 * time.Second

	s := strategy(cfg)
	assert.Equal(t, 3, s.MaxFaults)
	assert.Equal(t, 10*time.Second, s.Window)
	assert.Equal(t, actor.Stop, s.Decider(actor.ErrInvalidArgument))
}

func TestCreationTimeout(t *testing.T) {
	cfg := config.Default()
	cfg.Frontend.CreationTimeout = 3 * time.Second
	assert.Equal(t, 3*time.Second, creationTimeout(cfg))

	cfg.Frontend.CreationTimeout = 0
	assert.Equal(t, config.DefaultCreationTimeout, creationTimeout(cfg))
}

func TestKVConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.DataDir = "/var/lib/idmesh"
	cfg.Storage.GCInterval = 5 * time.Minute

	kc := kvConfig(cfg)
	assert.Equal(t, "/var/lib/idmesh", kc.Dir)
	assert.Equal(t, "5m0s", kc.GCInterval)
	assert.True(t, kc.SyncWrites)
}

func TestPathName(t *testing.T) {
	assert.Equal(t, "frontend", pathName(domain.FrontendPath))
	assert.Equal(t, "backend", pathName(domain.BackendPath))
}

func TestAllocatorConfig_StoreOnlyWithDataDir(t *testing.T) {
	kv, err := storage.NewBadgerEngine(storage.DefaultKVConfig(""), logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })

	p := backendParams{Config: config.Default()}
	assert.Nil(t, allocatorConfig(p, kv).Store)

	p.Config.Storage.DataDir = t.TempDir()
	assert.NotNil(t, allocatorConfig(p, kv).Store)
}

func TestReloadLogLevel_KeepsOverrides(t *testing.T) {
	prev := logger.GetLevel()
	t.Cleanup(func() { logger.SetLevel(prev) })

	path := filepath.Join(t.TempDir(), "idmesh.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: warn\n"), 0o600))

	logger.SetLevel("info")
	withFlag := ConfigSource{Path: path, Overrides: map[string]any{
		"node.role": config.RoleBackend,
		"log.level": "debug",
	}}
	reloadLogLevel(withFlag, logger.Discard())
	assert.Equal(t, "debug", logger.GetLevel())

	fileOnly := ConfigSource{Path: path, Overrides: map[string]any{"node.role": config.RoleBackend}}
	reloadLogLevel(fileOnly, logger.Discard())
	assert.Equal(t, "warn", logger.GetLevel())
}

func TestReloadLogLevel_InvalidFileKeepsLevel(t *testing.T) {
	prev := logger.GetLevel()
	t.Cleanup(func() { logger.SetLevel(prev) })

	path := filepath.Join(t.TempDir(), "idmesh.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log: [broken\n"), 0o600))

	logger.SetLevel("error")
	reloadLogLevel(ConfigSource{Path: path, Overrides: map[string]any{"node.role": config.RoleBackend}}, logger.Discard())
	assert.Equal(t, "error", logger.GetLevel())
}
