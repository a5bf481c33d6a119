package kafkaconn

import (
	"crypto/tls"
	"fmt"
	"net"
	"regexp"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/rcrowley/go-metrics"
	"golang.org/x/net/proxy"
)

const defaultClientID = "kafkaconn"

var validID = regexp.MustCompile(`\A[A-Za-z0-9._-]+\z`)

// Config is used to pass multiple configuration options to NewBroker. A Broker
// captures its Config at construction time and uses it for its entire lifetime.
type Config struct {
	// Net is the namespace for network-level properties used by the Broker.
	Net struct {
		// How long to wait for the TCP handshake with the broker to complete
		// (default 30s).
		DialTimeout time.Duration
		// How long to wait for each read or write on an established connection
		// before giving up on it (default 10s). A response is read in two steps,
		// the length prefix and then the body, and each step gets the full budget.
		SocketTimeout time.Duration

		// KeepAlive specifies the keep-alive period for an active network connection.
		// If zero, Go's default period of 15s applies; negative values are
		// rejected by Validate (default 0).
		KeepAlive time.Duration

		// LocalAddr is the local address to use when dialing an address. The
		// address must be of a compatible type for the network being dialed. If nil,
		// a local address is automatically chosen.
		LocalAddr net.Addr

		TLS struct {
			// Whether or not to use TLS when connecting to the broker
			// (defaults to false).
			Enable bool
			// The TLS configuration to use for secure connections if
			// enabled (defaults to nil).
			Config *tls.Config
		}

		// Proxy is used to dial the broker through a proxy, for example SOCKS5.
		Proxy struct {
			// Whether or not to use proxy when connecting to the broker
			// (defaults to false).
			Enable bool
			// The proxy dialer to use when enabled (defaults to nil).
			Dialer proxy.Dialer
		}
	}

	// A user-provided string sent with every request to the brokers for logging,
	// debugging, and auditing purposes. Defaults to "kafkaconn", but you should
	// probably set it to something specific to your application.
	ClientID string

	// The registry to define metrics into.
	// Defaults to a local registry.
	// If you want to disable metrics gathering, set "metrics.UseNilMetrics" to "true"
	// prior to starting kafkaconn.
	// See Examples on how to use the metrics registry
	MetricRegistry metrics.Registry
}

// NewConfig returns a new configuration instance with sane defaults.
func NewConfig() *Config {
	c := &Config{}

	c.Net.DialTimeout = 30 * time.Second
	c.Net.SocketTimeout = 10 * time.Second

	c.ClientID = defaultClientID
	c.MetricRegistry = metrics.NewRegistry()

	return c
}

// Validate checks a Config instance. It will return every problem it finds, combined
// into one error, if the specified values don't make sense. Each individual problem
// is a ConfigurationError.
func (c *Config) Validate() error {
	// some configuration values should be warned on but not fail completely, do those first
	if c.Net.TLS.Enable && c.Net.TLS.Config == nil {
		Logger.Println("Net.TLS is enabled but Net.TLS.Config is nil, the default TLS configuration will be used.")
	}
	if c.ClientID == defaultClientID {
		Logger.Println("ClientID is the default of 'kafkaconn', you should consider setting it to something application-specific.")
	}

	var result *multierror.Error

	switch {
	case c.Net.DialTimeout <= 0:
		result = multierror.Append(result, ConfigurationError("Net.DialTimeout must be > 0"))
	case c.Net.DialTimeout < time.Millisecond:
		result = multierror.Append(result, ConfigurationError("Net.DialTimeout must be at least 1ms"))
	}
	switch {
	case c.Net.SocketTimeout <= 0:
		result = multierror.Append(result, ConfigurationError("Net.SocketTimeout must be > 0"))
	case c.Net.SocketTimeout < time.Millisecond:
		result = multierror.Append(result, ConfigurationError("Net.SocketTimeout must be at least 1ms"))
	}
	if c.Net.KeepAlive < 0 {
		result = multierror.Append(result, ConfigurationError("Net.KeepAlive must be >= 0"))
	}
	if c.Net.Proxy.Enable && c.Net.Proxy.Dialer == nil {
		result = multierror.Append(result, ConfigurationError("Net.Proxy.Dialer must not be nil when Net.Proxy.Enable is true"))
	}
	if !validID.MatchString(c.ClientID) {
		result = multierror.Append(result, ConfigurationError("ClientID is invalid"))
	}
	if c.MetricRegistry == nil {
		result = multierror.Append(result, ConfigurationError("MetricRegistry must not be nil"))
	}

	if result == nil {
		return nil
	}
	result.ErrorFormat = listConfigurationErrors
	return result
}

func listConfigurationErrors(errs []error) string {
	if len(errs) == 1 {
		return errs[0].Error()
	}
	points := make([]string, len(errs))
	for i, err := range errs {
		points[i] = "* " + err.Error()
	}
	return fmt.Sprintf("%d configuration problems:\n\t%s", len(errs), strings.Join(points, "\n\t"))
}
