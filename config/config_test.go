package config

import (
	"bytes"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prebid/prebid-mobileads/errortypes"
)

func newViper(t *testing.T, yaml string) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetupViper(v, "")
	v.SetConfigType("yaml")
	if yaml != "" {
		require.NoError(t, v.ReadConfig(bytes.NewBufferString(yaml)))
	}
	return v
}

func TestDefaults(t *testing.T) {
	cfg, err := New(newViper(t, ""))
	require.NoError(t, err)

	assert.Equal(t, 8100, cfg.Port)
	assert.Equal(t, 6160, cfg.AdminPort)
	assert.Equal(t, 5000, cfg.RequestTimeoutMS)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "memory", cfg.Store.Type)
	assert.Equal(t, "mobileads:consent:", cfg.Store.Redis.KeyPrefix)
	assert.Equal(t, "EMULATOR", cfg.Sandbox.DeviceID)
	assert.Equal(t, "20.6.0", cfg.Sandbox.SDKVersion)
	assert.True(t, cfg.Sandbox.InEEA)
	assert.Equal(t, "personalized", cfg.Sandbox.FormChoice)
	assert.Equal(t, "No fill.", cfg.Sandbox.NoFillMessage)
	assert.Equal(t, Reward{Type: "coins", Amount: 10}, cfg.Sandbox.Reward)
	require.Len(t, cfg.Sandbox.AdProviders, 1)
	assert.Equal(t, "Google", cfg.Sandbox.AdProviders[0].CompanyName)
	require.Len(t, cfg.Sandbox.Adapters, 1)
	assert.True(t, cfg.Sandbox.Adapters[0].Ready)
	assert.Equal(t, 20, cfg.Metrics.Influxdb.MetricSendInterval)
}

func TestFullConfig(t *testing.T) {
	cfg, err := New(newViper(t, `
port: 9000
admin_port: 9001
enable_gzip: true
store:
  type: redis
  ttl_seconds: 3600
  redis:
    addr: localhost:6379
    db: 2
sandbox:
  device_id: 33BE2250B43518CCDA7DE426D04EE231
  in_eea: false
  form_choice: ad_free
  event_delay_ms: 50
  failing_ad_units: ["ca-app-pub-3940256099942544/0000000000"]
  reward:
    type: gems
    amount: 2.5
`))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.True(t, cfg.EnableGzip)
	assert.Equal(t, "redis", cfg.Store.Type)
	assert.Equal(t, 3600, cfg.Store.TTLSeconds)
	assert.Equal(t, "localhost:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, 2, cfg.Store.Redis.DB)
	assert.False(t, cfg.Sandbox.InEEA)
	assert.Equal(t, "ad_free", cfg.Sandbox.FormChoice)
	assert.Equal(t, 50, cfg.Sandbox.EventDelayMS)
	assert.Equal(t, Reward{Type: "gems", Amount: 2.5}, cfg.Sandbox.Reward)
	assert.True(t, cfg.Sandbox.FailsToLoad("ca-app-pub-3940256099942544/0000000000"))
	assert.False(t, cfg.Sandbox.FailsToLoad("ca-app-pub-3940256099942544/1033173712"))
}

func TestValidationErrors(t *testing.T) {
	testCases := []struct {
		description string
		yaml        string
		expectedErr string
	}{
		{
			description: "Same ports",
			yaml:        "port: 7000\nadmin_port: 7000\n",
			expectedErr: "port and admin_port must differ",
		},
		{
			description: "Unknown store type",
			yaml:        "store:\n  type: sqlite\n",
			expectedErr: "Configuration.Store.Type failed the 'oneof' check",
		},
		{
			description: "Redis without address",
			yaml:        "store:\n  type: redis\n",
			expectedErr: "store.redis.addr must be set",
		},
		{
			description: "Unknown form choice",
			yaml:        "sandbox:\n  form_choice: maybe\n",
			expectedErr: "Configuration.Sandbox.FormChoice failed the 'oneof' check",
		},
		{
			description: "Bad SDK version",
			yaml:        "sandbox:\n  sdk_version: twenty\n",
			expectedErr: "sandbox.sdk_version \"twenty\" is not a semantic version",
		},
		{
			description: "Bad consent string",
			yaml:        "sandbox:\n  consent_string: not-a-tc-string\n",
			expectedErr: "sandbox.consent_string",
		},
		{
			description: "Bad privacy policy URL",
			yaml:        "sandbox:\n  ad_providers:\n    - company_id: \"7\"\n      company_name: Acme\n      privacy_policy_url: \"not a url\"\n",
			expectedErr: "sandbox.ad_providers[0].privacy_policy_url",
		},
		{
			description: "Negative event delay",
			yaml:        "sandbox:\n  event_delay_ms: -1\n",
			expectedErr: "Configuration.Sandbox.EventDelayMS failed the 'min' check",
		},
	}

	for _, test := range testCases {
		t.Run(test.description, func(t *testing.T) {
			_, err := New(newViper(t, test.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), test.expectedErr)
			assert.Equal(t, errortypes.InvalidConfigErrorCode, errortypes.ReadCode(err))
		})
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("PMA_SANDBOX_DEVICE_ID", "FROM-ENV")
	t.Setenv("PMA_PORT", "8200")

	cfg, err := New(newViper(t, ""))
	require.NoError(t, err)

	assert.Equal(t, "FROM-ENV", cfg.Sandbox.DeviceID)
	assert.Equal(t, 8200, cfg.Port)
}
