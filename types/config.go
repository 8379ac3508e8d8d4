package types

import "time"

// QoS is the MQTT quality of service level, expressed with the same
// low/normal/high vocabulary as the connector configuration surface.
type QoS byte

const (
	// QoSLow corresponds to MQTT QoS 0 (at most once).
	QoSLow QoS = 0
	// QoSNormal corresponds to MQTT QoS 1 (at least once).
	QoSNormal QoS = 1
	// QoSHigh corresponds to MQTT QoS 2 (exactly once).
	QoSHigh QoS = 2
)

// ParseQoS maps the configuration vocabulary {"low","normal","high"}
// onto its numeric QoS level, defaulting to QoSNormal for unknown values.
func ParseQoS(s string) QoS {
	switch s {
	case "low":
		return QoSLow
	case "high":
		return QoSHigh
	default:
		return QoSNormal
	}
}

// AuthConfig configures the bearer-token endpoint.
type AuthConfig struct {
	Host string
	Path string
	ID   string
	TLS  bool
}

// CredentialsConfig configures the platform credentials.
type CredentialsConfig struct {
	User     string
	Password string
}

// APIConfig configures the HTTP control plane.
type APIConfig struct {
	Host                     string
	HubEndpoint              string
	DeviceEndpoint           string
	RequestTimeout           time.Duration
	EventualConsistencyDelay time.Duration
	TLS                      bool
}

// HubConfig seeds the hub descriptor across restarts.
type HubConfig struct {
	ID   string
	Name string
}

// DeviceConfig configures device-id handling.
type DeviceConfig struct {
	IDPrefix string
}

// ConnectorConfig configures the MQTT session.
type ConnectorConfig struct {
	Host             string
	Port             int
	MsgRetry         time.Duration
	Keepalive        time.Duration
	LoopTime         time.Duration
	QoS              string
	ReconnDelayMin   time.Duration
	ReconnDelayMax   time.Duration
	ReconnDelayFactor float64
	TLS              bool
}

// LoggerConfig configures the verbosity of the pluggable logging sink.
type LoggerConfig struct {
	Level string
}

// Config is the full set of recognized configuration options. It is a
// plain struct populated via NewConfig(opts...); there is no file or
// environment loader, that remains the caller's concern.
type Config struct {
	Auth       AuthConfig
	Credentials CredentialsConfig
	API        APIConfig
	Hub        HubConfig
	Device     DeviceConfig
	Connector  ConnectorConfig
	Logger     LoggerConfig
}

// Option configures a Config.
type Option func(*Config)

// defaultConfig mirrors the ambient defaults of the connector stack:
// normal QoS, a 10s HTTP timeout, and a reconnect policy that produces
// human-friendly sleep intervals.
func defaultConfig() *Config {
	return &Config{
		API: APIConfig{
			RequestTimeout:           10 * time.Second,
			EventualConsistencyDelay: 500 * time.Millisecond,
			HubEndpoint:              "hubs",
			DeviceEndpoint:           "devices",
		},
		Connector: ConnectorConfig{
			MsgRetry:          20 * time.Second,
			Keepalive:         30 * time.Second,
			LoopTime:          5 * time.Second,
			QoS:               "normal",
			ReconnDelayMin:    30 * time.Second,
			ReconnDelayMax:    600 * time.Second,
			ReconnDelayFactor: 1.7,
		},
		Logger: LoggerConfig{Level: "info"},
	}
}

// NewConfig builds a Config from functional options, layered over the
// ambient defaults above.
func NewConfig(opts ...Option) *Config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithAuth sets the bearer-token endpoint.
func WithAuth(host, path, id string, tls bool) Option {
	return func(c *Config) {
		c.Auth = AuthConfig{Host: host, Path: path, ID: id, TLS: tls}
	}
}

// WithCredentials sets the platform credentials.
func WithCredentials(user, password string) Option {
	return func(c *Config) {
		c.Credentials = CredentialsConfig{User: user, Password: password}
	}
}

// WithAPI sets the HTTP control-plane host and TLS mode, leaving the
// timeout/endpoint defaults untouched.
func WithAPI(host string, tls bool) Option {
	return func(c *Config) {
		c.API.Host = host
		c.API.TLS = tls
	}
}

// WithAPIEndpoints overrides the default hub/device HTTP endpoint paths.
func WithAPIEndpoints(hubEndpoint, deviceEndpoint string) Option {
	return func(c *Config) {
		c.API.HubEndpoint = hubEndpoint
		c.API.DeviceEndpoint = deviceEndpoint
	}
}

// WithRequestTimeout overrides the per-call HTTP timeout.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Config) { c.API.RequestTimeout = d }
}

// WithEventualConsistencyDelay overrides the post-create settle delay.
func WithEventualConsistencyDelay(d time.Duration) Option {
	return func(c *Config) { c.API.EventualConsistencyDelay = d }
}

// WithHub seeds a previously-known hub id/name.
func WithHub(id, name string) Option {
	return func(c *Config) { c.Hub = HubConfig{ID: id, Name: name} }
}

// WithDeviceIDPrefix sets a previously-derived, persisted device id prefix.
func WithDeviceIDPrefix(prefix string) Option {
	return func(c *Config) { c.Device.IDPrefix = prefix }
}

// WithConnector sets the broker host/port/TLS mode.
func WithConnector(host string, port int, tls bool) Option {
	return func(c *Config) {
		c.Connector.Host = host
		c.Connector.Port = port
		c.Connector.TLS = tls
	}
}

// WithQoS sets the connector-wide publish/subscribe QoS vocabulary
// ("low", "normal", or "high").
func WithQoS(qos string) Option {
	return func(c *Config) { c.Connector.QoS = qos }
}

// WithReconnectPolicy overrides the bounded-exponential backoff parameters.
func WithReconnectPolicy(min, max time.Duration, factor float64) Option {
	return func(c *Config) {
		c.Connector.ReconnDelayMin = min
		c.Connector.ReconnDelayMax = max
		c.Connector.ReconnDelayFactor = factor
	}
}

// WithLoggerLevel sets the verbosity hint passed to the pluggable Logger.
func WithLoggerLevel(level string) Option {
	return func(c *Config) { c.Logger.Level = level }
}
