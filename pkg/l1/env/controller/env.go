package controller

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/golang/glog"

	fx "github.com/robotalks/pursuit/pkg/framework"
	"github.com/robotalks/pursuit/pkg/l1"
	"github.com/robotalks/pursuit/pkg/l1/comm"
	"github.com/robotalks/pursuit/pkg/l1/comm/mqtt"
	"github.com/robotalks/pursuit/pkg/l1/env"
)

// Config provides common options to setup an env for L1 controllers.
type Config struct {
	Info l1.ControllerInfo

	// MQTTBrokerURL is the registry broker, empty runs without one,
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string
}

var defaultConfig = Config{
	MQTTBrokerURL: "mqtt://localhost:1883/pursuit/",
}

func init() {
	if val := os.Getenv("PURSUIT_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
	defaultConfig.Info.Ref.ID = env.ControllerID()
}

// Labels is a flag.Value collecting key=value meta labels.
type Labels map[string]string

// String implements flag.Value.
func (l *Labels) String() string {
	pairs := make([]string, 0, len(*l))
	for k, v := range *l {
		pairs = append(pairs, k+"="+v)
	}
	return strings.Join(pairs, ",")
}

// Set implements flag.Value.
func (l *Labels) Set(val string) error {
	k, v, ok := strings.Cut(val, "=")
	if !ok || k == "" {
		return fmt.Errorf("invalid label %q, expect key=value", val)
	}
	if *l == nil {
		*l = make(Labels)
	}
	(*l)[k] = v
	return nil
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Info.Ref.Type, "type", defaultConfig.Info.Ref.Type, "Controller type.")
	flag.StringVar(&defaultConfig.Info.Ref.ID, "id", defaultConfig.Info.Ref.ID, "Controller ID, derived from the machine ID by default.")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL of the registry, empty to disable.")
	flag.Var((*Labels)(&defaultConfig.Info.Meta.Labels), "label", "Meta label key=value, repeatable.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// SetControllerType should be called in init with basic info about the
// controller. Labels already set are kept.
func SetControllerType(typ string, meta l1.ControllerMeta) {
	defaultConfig.Info.Ref.Type = typ
	defaultConfig.Info.Meta.Description = meta.Description
	for k, v := range meta.Labels {
		(*Labels)(&defaultConfig.Info.Meta.Labels).Set(k + "=" + v)
	}
}

// Env is the env for L1 controllers.
type Env struct {
	Config       *Config
	RegistryURLs []string
	Registrar    *comm.RegistrarMux
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewEnv creates Env from config.
func (c *Config) NewEnv() (*Env, error) {
	if !c.Info.Ref.IsValid() {
		return nil, fmt.Errorf("controller type and id must be specified")
	}
	if strings.ContainsAny(c.Info.Ref.ID, "/+#") {
		return nil, fmt.Errorf("controller id %q must not contain MQTT topic characters", c.Info.Ref.ID)
	}
	env := &Env{
		Config:    c,
		Registrar: &comm.RegistrarMux{},
	}
	if c.MQTTBrokerURL != "" {
		reg, err := mqtt.NewRegistrar(c.MQTTBrokerURL, c.Info)
		if err != nil {
			return nil, fmt.Errorf("create MQTT registrar error: %w", err)
		}
		env.Registrar.Add(reg)
		env.RegistryURLs = append(env.RegistryURLs, c.MQTTBrokerURL)
		glog.Infof("registering %s at %s", c.Info.Ref.Name(), c.MQTTBrokerURL)
	}
	if len(env.Registrar.Registrars) == 0 {
		glog.Warning("no registrar configured, commands are only accepted in-process")
	}
	return env, nil
}

// MustNewEnv creates Env and exits on error.
func (c *Config) MustNewEnv() *Env {
	env, err := c.NewEnv()
	if err != nil {
		glog.Exit(err)
	}
	return env
}

// AddToLoop adds registrars and the fallback for unsupported commands.
func (e *Env) AddToLoop(loop *fx.Loop) {
	loop.Add(e.Registrar)
	loop.Add(&comm.UnsupportedCommands{})
}
