package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfig_Defaults(t *testing.T) {
	t.Setenv("ADMIN_GROUPNAME", "Operators")

	require.NoError(t, InitConfig())
	cfg := GetConfig()
	require.NotNil(t, cfg)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, BackendNeo4j, cfg.Storage.Permissions.Backend)
	assert.Equal(t, 30*time.Second, cfg.Structure.CacheTTL)
	assert.Equal(t, []string{"create", "read", "update", "delete"}, GetStringSlice("permissions.actions"))
	assert.Equal(t, "Operators", GetString("admin.groupName"))
}
