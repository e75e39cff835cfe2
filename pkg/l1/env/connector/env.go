package connector

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/robotalks/pursuit/pkg/l1"
	"github.com/robotalks/pursuit/pkg/l1/comm/mqtt"
)

// Config selects the simulator controller to connect to.
type Config struct {
	Ref l1.ControllerRef

	// RegistryURL is the MQTT broker controllers register at,
	// e.g. mqtt://host:port/topic-prefix
	RegistryURL    string
	ConnectTimeout time.Duration
}

var defaultConfig = Config{
	RegistryURL:    "mqtt://localhost:1883/pursuit/",
	ConnectTimeout: mqtt.DefaultConnectTimeout,
}

func init() {
	if val := os.Getenv("PURSUIT_TYPE"); val != "" {
		defaultConfig.Ref.Type = val
	}
	if val := os.Getenv("PURSUIT_ID"); val != "" {
		defaultConfig.Ref.ID = val
	}
	if val := os.Getenv("PURSUIT_MQTT_URL"); val != "" {
		defaultConfig.RegistryURL = val
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Ref.Type, "sim-type", defaultConfig.Ref.Type, "Simulator controller type to connect.")
	flag.StringVar(&defaultConfig.Ref.ID, "sim-id", defaultConfig.Ref.ID, "Simulator controller ID to connect.")
	flag.StringVar(&defaultConfig.RegistryURL, "mqtt", defaultConfig.RegistryURL, "MQTT broker URL of the controller registry.")
	flag.DurationVar(&defaultConfig.ConnectTimeout, "connect-timeout", defaultConfig.ConnectTimeout, "Timeout connecting to the broker.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewConnector creates the MQTT Connector for RegistryURL.
func (c *Config) NewConnector() (*mqtt.Connector, error) {
	connector, err := mqtt.NewConnector(c.RegistryURL)
	if err != nil {
		return nil, fmt.Errorf("invalid registry URL: %w", err)
	}
	if c.ConnectTimeout > 0 {
		connector.ConnectTimeout = c.ConnectTimeout
	}
	return connector, nil
}

// Connect connects to the configured controller.
func (c *Config) Connect(ctx context.Context) (l1.ControllerConn, error) {
	if !c.Ref.IsValid() {
		return nil, fmt.Errorf("simulator type and id must be specified")
	}
	connector, err := c.NewConnector()
	if err != nil {
		return nil, err
	}
	return connector.Connect(ctx, c.Ref)
}
