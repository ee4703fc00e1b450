package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8100, cfg.Port)
	assert.Equal(t, "memory", cfg.Store.Type)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("PMA_PORT", "9100")
	t.Setenv("PMA_SANDBOX_DEVICE_ID", "33BE2250B43518CCDA7DE426D04EE231")

	cfg, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, "33BE2250B43518CCDA7DE426D04EE231", cfg.Sandbox.DeviceID)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	t.Setenv("PMA_STORE_TYPE", "sqlite")

	_, err := loadConfig()
	assert.Error(t, err)
}
