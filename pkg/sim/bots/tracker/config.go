package tracker

import (
	"flag"

	"github.com/robotalks/pursuit/pkg/l1"
	"github.com/robotalks/pursuit/pkg/sim/driver"
)

// Config defines the configuration for the controller.
type Config struct {
	// AutoStart starts a run as soon as the controller is created.
	AutoStart bool
}

var defaultConfig = Config{}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.BoolVar(&defaultConfig.AutoStart, "autostart", defaultConfig.AutoStart, "Start the simulation without waiting for a command.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates the default configuration.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewController creates the Controller with a driver built from dc.
func (c *Config) NewController(reg l1.Registrar, dc *driver.Config) (*Controller, error) {
	d, err := dc.NewDriver()
	if err != nil {
		return nil, err
	}
	ctl := NewController(reg, d, dc.NewPresenter(d))
	if c.AutoStart {
		if err := ctl.start(); err != nil {
			return nil, err
		}
	}
	return ctl, nil
}
