package driver

import (
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/robotalks/pursuit/pkg/sim"
	"github.com/robotalks/pursuit/pkg/sim/physics/diffdrive"
)

// Setup holds the values applied to the robot on start and reset.
type Setup struct {
	X0     float64 `yaml:"x0" json:"x0"`
	Y0     float64 `yaml:"y0" json:"y0"`
	Theta0 float64 `yaml:"theta0" json:"theta0"` // degrees
	K      float64 `yaml:"k" json:"k"`
	L      float64 `yaml:"l" json:"l"`
	Dt     float64 `yaml:"dt" json:"dt"`
}

// Params extracts the model parameters.
func (s Setup) Params() diffdrive.Params {
	return diffdrive.Params{L: s.L, K: s.K, Dt: s.Dt}
}

// Validate rejects values the model can't run with. The driver itself
// accepts anything, callers feeding user input should validate first.
func (s Setup) Validate() error {
	for _, v := range []struct {
		name string
		val  float64
	}{
		{"x0", s.X0}, {"y0", s.Y0}, {"theta0", s.Theta0},
		{"k", s.K}, {"l", s.L}, {"dt", s.Dt},
	} {
		if math.IsNaN(v.val) || math.IsInf(v.val, 0) {
			return fmt.Errorf("%s must be finite", v.name)
		}
	}
	if s.L == 0 {
		return fmt.Errorf("l must not be zero")
	}
	if s.Dt < MinDt || s.Dt > MaxDt {
		return fmt.Errorf("dt must be within [%g, %g] seconds", MinDt, MaxDt)
	}
	return nil
}

// Timestep bounds (seconds).
const (
	MinDt = 1e-6
	MaxDt = 3600.0
)

// StepDuration converts Dt to the accumulator step, clamped to
// [MinDt, MaxDt] so the step is always a positive Duration.
func (s Setup) StepDuration() time.Duration {
	dt := s.Dt
	if !(dt >= MinDt) {
		dt = MinDt
	} else if dt > MaxDt {
		dt = MaxDt
	}
	return time.Duration(math.Round(dt * float64(time.Second)))
}

// Config configures a Driver.
type Config struct {
	Setup Setup `yaml:"setup"`
	// Workspace size (mm), centered at origin.
	WorkspaceW float64 `yaml:"workspace_w"`
	WorkspaceH float64 `yaml:"workspace_h"`
	Source     string  `yaml:"source"`

	MaxFrameDelta    time.Duration `yaml:"max_frame_delta"`
	MaxStepsPerFrame int           `yaml:"max_steps_per_frame"`
	TrajectoryMax    int           `yaml:"trajectory_max"`
	TrajectoryTrim   int           `yaml:"trajectory_trim"`
	WindowMax        int           `yaml:"window_max"`
	WindowTrim       int           `yaml:"window_trim"`
	ChartInterval    time.Duration `yaml:"chart_interval"`

	// SetupFile is a YAML file overriding the values above.
	SetupFile string `yaml:"-"`
}

// Defaults
const (
	DefaultWorkspaceW       = 600.0
	DefaultWorkspaceH       = 400.0
	DefaultMaxFrameDelta    = 250 * time.Millisecond
	DefaultMaxStepsPerFrame = 5
	DefaultWindowMax        = 3000
	DefaultWindowTrim       = 300
	DefaultChartInterval    = 125 * time.Millisecond
)

var defaultConfig = Config{
	Setup: Setup{
		K:  diffdrive.DefaultGain,
		L:  diffdrive.DefaultOffset,
		Dt: diffdrive.DefaultTimestep,
	},
	WorkspaceW:       DefaultWorkspaceW,
	WorkspaceH:       DefaultWorkspaceH,
	Source:           string(SourceManual),
	MaxFrameDelta:    DefaultMaxFrameDelta,
	MaxStepsPerFrame: DefaultMaxStepsPerFrame,
	TrajectoryMax:    diffdrive.DefaultTrajectoryMax,
	TrajectoryTrim:   diffdrive.DefaultTrajectoryTrim,
	WindowMax:        DefaultWindowMax,
	WindowTrim:       DefaultWindowTrim,
	ChartInterval:    DefaultChartInterval,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.Float64Var(&defaultConfig.Setup.X0, "x0", defaultConfig.Setup.X0, "Initial X (mm).")
	flag.Float64Var(&defaultConfig.Setup.Y0, "y0", defaultConfig.Setup.Y0, "Initial Y (mm).")
	flag.Float64Var(&defaultConfig.Setup.Theta0, "theta0", defaultConfig.Setup.Theta0, "Initial heading (degrees).")
	flag.Float64Var(&defaultConfig.Setup.K, "k", defaultConfig.Setup.K, "Proportional gain (1/s).")
	flag.Float64Var(&defaultConfig.Setup.L, "l", defaultConfig.Setup.L, "Control point offset (mm), must not be 0.")
	flag.Float64Var(&defaultConfig.Setup.Dt, "dt", defaultConfig.Setup.Dt, "Simulation timestep (s).")
	flag.Float64Var(&defaultConfig.WorkspaceW, "workspace-w", defaultConfig.WorkspaceW, "Workspace width (mm).")
	flag.Float64Var(&defaultConfig.WorkspaceH, "workspace-h", defaultConfig.WorkspaceH, "Workspace height (mm).")
	flag.StringVar(&defaultConfig.Source, "source", defaultConfig.Source, "Target source: manual or feed.")
	flag.DurationVar(&defaultConfig.MaxFrameDelta, "max-frame-delta", defaultConfig.MaxFrameDelta, "Ceiling of wall-clock time accounted per frame.")
	flag.IntVar(&defaultConfig.MaxStepsPerFrame, "max-steps", defaultConfig.MaxStepsPerFrame, "Maximum simulation steps per frame.")
	flag.DurationVar(&defaultConfig.ChartInterval, "chart-interval", defaultConfig.ChartInterval, "Minimum interval between chart updates.")
	flag.StringVar(&defaultConfig.SetupFile, "setup", defaultConfig.SetupFile, "YAML file with driver configuration.")
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

// LoadFile overrides the config with values from a YAML file.
func (c *Config) LoadFile(fn string) error {
	data, err := os.ReadFile(fn)
	if err != nil {
		return err
	}
	return c.LoadYAML(data)
}

// LoadYAML overrides the config with YAML content.
// Fields absent from the content are left unchanged.
func (c *Config) LoadYAML(data []byte) error {
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("invalid driver config: %w", err)
	}
	return nil
}

// Workspace returns the workspace rectangle.
func (c *Config) Workspace() sim.Rect {
	return sim.RectAround(c.WorkspaceW/2, c.WorkspaceH/2)
}

// NewDriver creates the Driver.
func (c *Config) NewDriver() (*Driver, error) {
	if c.SetupFile != "" {
		if err := c.LoadFile(c.SetupFile); err != nil {
			return nil, err
		}
	}
	if err := c.Setup.Validate(); err != nil {
		return nil, err
	}
	src, err := ParseSource(c.Source)
	if err != nil {
		return nil, err
	}
	d := New(c.Setup, c.Workspace())
	d.source = src
	if c.MaxFrameDelta > 0 {
		d.MaxFrameDelta = c.MaxFrameDelta
	}
	if c.MaxStepsPerFrame > 0 {
		d.MaxStepsPerFrame = c.MaxStepsPerFrame
	}
	d.robot.WithTrajectoryLimit(c.TrajectoryMax, c.TrajectoryTrim)
	d.window.Max, d.window.Batch = c.WindowMax, c.WindowTrim
	return d, nil
}

// NewPresenter creates a Presenter for the driver.
func (c *Config) NewPresenter(d *Driver) *Presenter {
	p := NewPresenter(d)
	if c.ChartInterval > 0 {
		p.ChartInterval = c.ChartInterval
	}
	return p
}
