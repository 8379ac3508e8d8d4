package transport

import (
	"crypto/tls"
	"net/http"
	"time"
)

// Option configures a transport. The same functional-options shape is
// used for both the MQTT and HTTP transports, mirroring this
// codebase's established configuration idiom.
type Option func(*options)

// options holds common configuration for all transports.
type options struct {
	client      *http.Client
	tlsConfig   *tls.Config
	username    string
	password    string
	retryDelay  time.Duration
	timeout     time.Duration
	connTimeout time.Duration
	maxRetries  int
	keepalive   time.Duration
	msgRetry    time.Duration
	metrics     bool
}

// defaultOptions returns a default options struct.
func defaultOptions() *options {
	return &options{
		timeout:     10 * time.Second,
		connTimeout: 10 * time.Second,
		retryDelay:  1 * time.Second,
		maxRetries:  3,
		keepalive:   30 * time.Second,
		msgRetry:    20 * time.Second,
	}
}

// applyOptions applies option functions to an options struct.
func applyOptions(opts *options, fns []Option) {
	for _, fn := range fns {
		fn(opts)
	}
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithConnectTimeout sets the MQTT CONNECT timeout.
func WithConnectTimeout(d time.Duration) Option {
	return func(o *options) { o.connTimeout = d }
}

// WithHTTPClient sets a custom HTTP client for the default HttpRequester.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) { o.client = client }
}

// WithBasicAuth sets MQTT username/password credentials.
func WithBasicAuth(username, password string) Option {
	return func(o *options) {
		o.username = username
		o.password = password
	}
}

// WithTLSConfig sets a custom TLS configuration for the MQTT transport.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(o *options) { o.tlsConfig = cfg }
}

// WithMaxRetries sets the maximum retry attempts for the default HttpRequester.
func WithMaxRetries(n int) Option {
	return func(o *options) { o.maxRetries = n }
}

// WithRetryDelay sets the base retry delay for the default HttpRequester.
func WithRetryDelay(d time.Duration) Option {
	return func(o *options) { o.retryDelay = d }
}

// WithKeepalive sets the MQTT keepalive interval.
func WithKeepalive(d time.Duration) Option {
	return func(o *options) { o.keepalive = d }
}

// WithMsgRetry sets the MQTT message retry interval.
func WithMsgRetry(d time.Duration) Option {
	return func(o *options) { o.msgRetry = d }
}

// WithMetrics enables OpenTelemetry instrumentation on the default HttpRequester.
func WithMetrics(enabled bool) Option {
	return func(o *options) { o.metrics = enabled }
}
