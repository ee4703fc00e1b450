package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	validator "github.com/asaskevich/govalidator"
	"github.com/blang/semver"
	playground "github.com/go-playground/validator/v10"
	"github.com/golang/glog"
	"github.com/spf13/viper"

	"github.com/prebid/prebid-mobileads/consent"
	"github.com/prebid/prebid-mobileads/errortypes"
)

// Configuration of the sandbox bridge host.
type Configuration struct {
	ExternalURL      string  `mapstructure:"external_url"`
	Host             string  `mapstructure:"host"`
	Port             int     `mapstructure:"port" validate:"min=1,max=65535"`
	AdminPort        int     `mapstructure:"admin_port" validate:"min=1,max=65535"`
	EnableGzip       bool    `mapstructure:"enable_gzip"`
	StatusResponse   string  `mapstructure:"status_response"`
	RequestTimeoutMS int     `mapstructure:"request_timeout_ms" validate:"min=0"`
	CORS             CORS    `mapstructure:"cors"`
	Metrics          Metrics `mapstructure:"metrics"`
	Store            Store   `mapstructure:"store"`
	Sandbox          Sandbox `mapstructure:"sandbox"`
}

type CORS struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
}

type Metrics struct {
	Influxdb   InfluxMetrics     `mapstructure:"influxdb"`
	Prometheus PrometheusMetrics `mapstructure:"prometheus"`
}

type InfluxMetrics struct {
	Host               string `mapstructure:"host"`
	Database           string `mapstructure:"database"`
	Username           string `mapstructure:"username"`
	Password           string `mapstructure:"password"`
	MetricSendInterval int    `mapstructure:"metric_send_interval" validate:"min=0"`
}

type PrometheusMetrics struct {
	Port      int    `mapstructure:"port" validate:"min=0,max=65535"`
	Namespace string `mapstructure:"namespace"`
	Subsystem string `mapstructure:"subsystem"`
}

// Store selects where the sandbox keeps the consent state of the simulated device.
type Store struct {
	Type       string `mapstructure:"type" validate:"oneof=memory redis"`
	TTLSeconds int    `mapstructure:"ttl_seconds" validate:"min=0"`
	Redis      Redis  `mapstructure:"redis"`
}

type Redis struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db" validate:"min=0"`
	KeyPrefix string `mapstructure:"key_prefix"`
	TimeoutMS int    `mapstructure:"timeout_ms" validate:"min=0"`
}

// Sandbox drives the canned answers of the simulated native layer.
type Sandbox struct {
	DeviceID       string          `mapstructure:"device_id" validate:"required"`
	SDKVersion     string          `mapstructure:"sdk_version" validate:"required"`
	InEEA          bool            `mapstructure:"in_eea"`
	FormChoice     string          `mapstructure:"form_choice" validate:"oneof=personalized non_personalized ad_free"`
	ConsentString  string          `mapstructure:"consent_string"`
	EventDelayMS   int             `mapstructure:"event_delay_ms" validate:"min=0"`
	FailingAdUnits []string        `mapstructure:"failing_ad_units"`
	NoFillMessage  string          `mapstructure:"no_fill_message"`
	Reward         Reward          `mapstructure:"reward"`
	AdProviders    []AdProvider    `mapstructure:"ad_providers" validate:"dive"`
	Adapters       []AdapterStatus `mapstructure:"adapters" validate:"dive"`
}

type Reward struct {
	Type   string  `mapstructure:"type"`
	Amount float64 `mapstructure:"amount" validate:"min=0"`
}

type AdProvider struct {
	CompanyID        string `mapstructure:"company_id" validate:"required"`
	CompanyName      string `mapstructure:"company_name" validate:"required"`
	PrivacyPolicyURL string `mapstructure:"privacy_policy_url"`
}

type AdapterStatus struct {
	Name        string `mapstructure:"name" validate:"required"`
	Description string `mapstructure:"description"`
	Ready       bool   `mapstructure:"ready"`
}

// New uses viper to get our server configurations.
func New(v *viper.Viper) (*Configuration, error) {
	var c Configuration
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("viper failed to unmarshal app config: %v", err)
	}

	glog.Info("Logging the resolved configuration:")
	logGeneral(reflect.ValueOf(c), "  \t")

	if errs := c.validate(); len(errs) > 0 {
		return &c, errortypes.NewAggregateErrors("validation errors", errs)
	}
	return &c, nil
}

var structValidator = playground.New()

func (cfg *Configuration) validate() []error {
	var errs []error

	if err := structValidator.Struct(cfg); err != nil {
		var fieldErrs playground.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fieldErr := range fieldErrs {
				errs = append(errs, fmt.Errorf("%s failed the '%s' check", fieldErr.Namespace(), fieldErr.Tag()))
			}
		} else {
			errs = append(errs, err)
		}
	}

	if cfg.Port == cfg.AdminPort {
		errs = append(errs, fmt.Errorf("port and admin_port must differ, both are %d", cfg.Port))
	}
	if cfg.ExternalURL != "" && !isValidURL(cfg.ExternalURL) {
		errs = append(errs, fmt.Errorf("external_url %q is not a valid URL", cfg.ExternalURL))
	}
	errs = cfg.Store.validate(errs)
	errs = cfg.Sandbox.validate(errs)
	return errs
}

func (s Store) validate(errs []error) []error {
	if s.Type == "redis" && s.Redis.Addr == "" {
		errs = append(errs, errors.New("store.redis.addr must be set when store.type is redis"))
	}
	return errs
}

func (s Sandbox) validate(errs []error) []error {
	if _, err := semver.Parse(s.SDKVersion); err != nil {
		errs = append(errs, fmt.Errorf("sandbox.sdk_version %q is not a semantic version: %v", s.SDKVersion, err))
	}
	if s.ConsentString != "" {
		if _, err := consent.DecodeTCString(s.ConsentString); err != nil {
			errs = append(errs, fmt.Errorf("sandbox.consent_string: %v", err))
		}
	}
	for i, provider := range s.AdProviders {
		if provider.PrivacyPolicyURL != "" && !isValidURL(provider.PrivacyPolicyURL) {
			errs = append(errs, fmt.Errorf("sandbox.ad_providers[%d].privacy_policy_url %q is not a valid URL", i, provider.PrivacyPolicyURL))
		}
	}
	return errs
}

// FailsToLoad reports whether the sandbox answers loads of adUnitID with a no-fill error.
func (s Sandbox) FailsToLoad(adUnitID string) bool {
	for _, unit := range s.FailingAdUnits {
		if unit == adUnitID {
			return true
		}
	}
	return false
}

func isValidURL(raw string) bool {
	return validator.IsURL(raw) && validator.IsRequestURL(raw)
}

// SetupViper registers the defaults and the file and environment sources of the configuration.
// Environment variables use the PMA_ prefix, e.g. PMA_SANDBOX_IN_EEA=false.
func SetupViper(v *viper.Viper, filename string) {
	if filename != "" {
		v.SetConfigName(filename)
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/config")
	}

	v.SetDefault("external_url", "http://localhost:8100")
	v.SetDefault("host", "")
	v.SetDefault("port", 8100)
	v.SetDefault("admin_port", 6160)
	v.SetDefault("enable_gzip", false)
	v.SetDefault("status_response", "")
	v.SetDefault("request_timeout_ms", 5000)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allow_credentials", false)
	v.SetDefault("metrics.influxdb.host", "")
	v.SetDefault("metrics.influxdb.database", "")
	v.SetDefault("metrics.influxdb.username", "")
	v.SetDefault("metrics.influxdb.password", "")
	v.SetDefault("metrics.influxdb.metric_send_interval", 20)
	v.SetDefault("metrics.prometheus.port", 0)
	v.SetDefault("metrics.prometheus.namespace", "mobileads")
	v.SetDefault("metrics.prometheus.subsystem", "sandbox")
	v.SetDefault("store.type", "memory")
	v.SetDefault("store.ttl_seconds", 0)
	v.SetDefault("store.redis.addr", "")
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.redis.key_prefix", "mobileads:consent:")
	v.SetDefault("store.redis.timeout_ms", 200)
	v.SetDefault("sandbox.device_id", "EMULATOR")
	v.SetDefault("sandbox.sdk_version", "20.6.0")
	v.SetDefault("sandbox.in_eea", true)
	v.SetDefault("sandbox.form_choice", "personalized")
	v.SetDefault("sandbox.consent_string", "")
	v.SetDefault("sandbox.event_delay_ms", 0)
	v.SetDefault("sandbox.failing_ad_units", []string{})
	v.SetDefault("sandbox.no_fill_message", "No fill.")
	v.SetDefault("sandbox.reward.type", "coins")
	v.SetDefault("sandbox.reward.amount", 10)
	v.SetDefault("sandbox.ad_providers", []map[string]interface{}{
		{"company_id": "1", "company_name": "Google", "privacy_policy_url": "https://policies.google.com/privacy"},
	})
	v.SetDefault("sandbox.adapters", []map[string]interface{}{
		{"name": "com.google.android.gms.ads.MobileAds", "description": "", "ready": true},
	})

	v.SetEnvPrefix("PMA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if filename != "" {
		if err := v.ReadInConfig(); err != nil {
			glog.Warningf("Configuration file %s not read, using defaults and environment: %v", filename, err)
		}
	}
}
