package see

import "flag"

// Config represents configuration for see.
type Config struct {
	W float64
	H float64
	// RobotSize is the diameter (mm) the robot is drawn with.
	RobotSize float64
	// TrailPoints limits the points sent for the trajectory.
	TrailPoints int
}

var defaultConfig = Config{
	W:           600,
	H:           400,
	RobotSize:   40,
	TrailPoints: 400,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.Float64Var(&defaultConfig.W, "see-w", defaultConfig.W, "Width (mm) of visualization area")
	flag.Float64Var(&defaultConfig.H, "see-h", defaultConfig.H, "Height (mm) of visualization area")
	flag.Float64Var(&defaultConfig.RobotSize, "see-robot-size", defaultConfig.RobotSize, "Size (mm) of the robot drawn")
	flag.IntVar(&defaultConfig.TrailPoints, "see-trail", defaultConfig.TrailPoints, "Maximum trajectory points per frame")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a default config.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewAdapter creates adapter from config.
func (c *Config) NewAdapter() *Adapter {
	return NewAdapter(c)
}
