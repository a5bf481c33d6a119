package kafkaconn

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/rcrowley/go-metrics"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValidates(t *testing.T) {
	config := NewConfig()
	if err := config.Validate(); err != nil {
		t.Error(err)
	}
	if config.MetricRegistry == nil {
		t.Error("Expected non nil metrics.MetricRegistry, got nil")
	}
	require.Equal(t, 30*time.Second, config.Net.DialTimeout)
	require.Equal(t, 10*time.Second, config.Net.SocketTimeout)
	require.Equal(t, defaultClientID, config.ClientID)
}

func TestInvalidClientIDConfigValidates(t *testing.T) {
	config := NewConfig()
	config.ClientID = "foo:bar"
	err := config.Validate()
	require.Error(t, err)
	require.Equal(t, "kafka: invalid configuration (ClientID is invalid)", err.Error())

	var configErr ConfigurationError
	require.True(t, errors.As(err, &configErr))
}

func TestEmptyClientIDConfigValidates(t *testing.T) {
	config := NewConfig()
	config.ClientID = ""
	err := config.Validate()
	require.EqualError(t, err, "kafka: invalid configuration (ClientID is invalid)")
}

func TestNetConfigValidates(t *testing.T) {
	tests := []struct {
		name string
		cfg  func(*Config)
		err  string
	}{
		{
			"DialTimeout",
			func(cfg *Config) {
				cfg.Net.DialTimeout = 0
			},
			"Net.DialTimeout must be > 0",
		},
		{
			"DialTimeoutTooSmall",
			func(cfg *Config) {
				cfg.Net.DialTimeout = time.Microsecond
			},
			"Net.DialTimeout must be at least 1ms",
		},
		{
			"SocketTimeout",
			func(cfg *Config) {
				cfg.Net.SocketTimeout = -1
			},
			"Net.SocketTimeout must be > 0",
		},
		{
			"SocketTimeoutTooSmall",
			func(cfg *Config) {
				cfg.Net.SocketTimeout = 10 * time.Microsecond
			},
			"Net.SocketTimeout must be at least 1ms",
		},
		{
			"KeepAlive",
			func(cfg *Config) {
				cfg.Net.KeepAlive = -1
			},
			"Net.KeepAlive must be >= 0",
		},
		{
			"ProxyDialer",
			func(cfg *Config) {
				cfg.Net.Proxy.Enable = true
			},
			"Net.Proxy.Dialer must not be nil when Net.Proxy.Enable is true",
		},
		{
			"MetricRegistry",
			func(cfg *Config) {
				cfg.MetricRegistry = nil
			},
			"MetricRegistry must not be nil",
		},
	}

	for i, test := range tests {
		c := NewConfig()
		test.cfg(c)
		err := c.Validate()
		var configErr ConfigurationError
		if !errors.As(err, &configErr) || string(configErr) != test.err {
			t.Errorf("[%d]:[%s] Expected %s, Got %s\n", i, test.name, test.err, err)
		}
	}
}

func TestConfigValidateCollectsEveryProblem(t *testing.T) {
	config := NewConfig()
	config.Net.DialTimeout = 0
	config.Net.SocketTimeout = 0
	config.ClientID = "not valid"

	err := config.Validate()
	require.Error(t, err)

	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	require.Len(t, merr.Errors, 3)
	require.True(t, strings.HasPrefix(err.Error(), "3 configuration problems:"))
	require.Contains(t, err.Error(), "Net.SocketTimeout must be > 0")
}

func TestConfigValidateWarnings(t *testing.T) {
	logger := new(recordingLogger)
	useLogger(t, logger)

	config := NewConfig()
	config.Net.TLS.Enable = true
	require.NoError(t, config.Validate())

	require.True(t, logger.contains("Net.TLS is enabled but Net.TLS.Config is nil"))
	require.True(t, logger.contains("ClientID is the default"))
}

func TestNewBrokerRejectsInvalidConfig(t *testing.T) {
	config := NewConfig()
	config.Net.SocketTimeout = 0

	broker, err := NewBroker("localhost", 9092, config)
	require.Nil(t, broker)

	var configErr ConfigurationError
	require.True(t, errors.As(err, &configErr))
}

func TestConfigSharedMetricRegistry(t *testing.T) {
	config := NewConfig()
	config.ClientID = "shared"
	config.MetricRegistry = metrics.NewRegistry()

	_, err := NewBroker("a.local", 9092, config)
	require.NoError(t, err)
	_, err = NewBroker("b.local", 9092, config)
	require.NoError(t, err)

	require.NotNil(t, config.MetricRegistry.Get("request-rate"))
	require.NotNil(t, config.MetricRegistry.Get("request-rate-for-broker-a.local:9092"))
	require.NotNil(t, config.MetricRegistry.Get("request-rate-for-broker-b.local:9092"))
}
