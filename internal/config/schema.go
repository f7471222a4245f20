package config

import "log/slog"

// Config is the top-level YAML structure.
type Config struct {
	Service   ServiceConf   `yaml:"service"`
	Server    ServerConf    `yaml:"server"`
	Log       LogConf       `yaml:"log"`
	Sink      SinkConf      `yaml:"sink"`
	Translate TranslateConf `yaml:"translate"`
	Dispatch  DispatchConf  `yaml:"dispatch"`
}

// ServiceConf names the service in health responses.
type ServiceConf struct {
	Name string `yaml:"name"`
}

// ServerConf holds listener settings.
type ServerConf struct {
	Port              int `yaml:"port"`
	ReadTimeoutMs     int `yaml:"read_timeout_ms"`
	WriteTimeoutMs    int `yaml:"write_timeout_ms"`
	ShutdownTimeoutMs int `yaml:"shutdown_timeout_ms"`
}

// LogConf selects the slog handler.
type LogConf struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// SinkConf locates the Conversions API endpoint.
type SinkConf struct {
	BaseURL     string `yaml:"base_url"`
	APIVersion  string `yaml:"api_version"`
	PixelID     string `yaml:"pixel_id"`
	AccessToken Secret `yaml:"access_token"`
	TimeoutMs   int    `yaml:"timeout_ms"`
}

// TranslateConf holds the values stamped on every outbound event.
type TranslateConf struct {
	EventSourceURL  string `yaml:"event_source_url"`
	ActionSource    string `yaml:"action_source"`
	DefaultCurrency string `yaml:"default_currency"`
	DefaultCountry  string `yaml:"default_country"`
}

// Dispatch modes.
const (
	DispatchSync  = "sync"
	DispatchAsync = "async"
)

// DispatchConf controls how a fan-out is delivered.
type DispatchConf struct {
	Mode       string `yaml:"mode"`
	Workers    int    `yaml:"workers"`
	QueueDepth int    `yaml:"queue_depth"`
}

// Secret is a string that never prints its value.
type Secret string

const redacted = "[REDACTED]"

// Value returns the underlying secret.
func (s Secret) Value() string { return string(s) }

func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return redacted
}

// GoString keeps %#v from leaking the value.
func (s Secret) GoString() string { return s.String() }

// LogValue implements slog.LogValuer.
func (s Secret) LogValue() slog.Value { return slog.StringValue(s.String()) }
