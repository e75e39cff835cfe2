// Package api serves the simulator over HTTP.
package api

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/golang/glog"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	fx "github.com/robotalks/pursuit/pkg/framework"
	"github.com/robotalks/pursuit/pkg/l1"
)

// DefaultCommandTimeout bounds the wait for a command reply.
const DefaultCommandTimeout = 2 * time.Second

// Server exposes simulator commands, exports and the live stream.
type Server struct {
	Addr    string
	Conn    l1.ControllerConn
	Stream  *Streamer
	Timeout time.Duration
	Echo    *echo.Echo
}

// NewServer creates the Server with all routes registered.
func NewServer(conn l1.ControllerConn, stream *Streamer) *Server {
	s := &Server{
		Conn:    conn,
		Stream:  stream,
		Timeout: DefaultCommandTimeout,
		Echo:    echo.New(),
	}
	e := s.Echo
	e.HideBanner, e.HidePort = true, true
	e.HTTPErrorHandler = ErrorHandler
	e.Use(middleware.Recover())

	e.GET("/health", s.HandleHealth)
	g := e.Group("/api/sim")
	g.GET("/status", s.HandleStatus)
	g.POST("/start", s.HandleStart)
	g.POST("/pause", s.HandlePause)
	g.POST("/resume", s.HandleResume)
	g.POST("/reset", s.HandleReset)
	g.PUT("/target", s.HandleSetTarget)
	g.PUT("/source", s.HandleSelectSource)
	g.PUT("/setup", s.HandleConfigure)
	g.GET("/export.csv", s.HandleExportCSV)
	g.GET("/window", s.HandleWindow)
	if stream != nil {
		g.GET("/stream", stream.Handler())
	}
	return s
}

// Run implements Runnable.
func (s *Server) Run(ctx context.Context) error {
	glog.Infof("HTTP API listening on %s", s.Addr)
	return fx.RunWithContextCancel(ctx, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Echo.Shutdown(shutdownCtx); err != nil {
			glog.Errorf("HTTP API shutdown error: %v", err)
		}
	}, func() error {
		if err := s.Echo.Start(s.Addr); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
}

// Config configures the HTTP API.
type Config struct {
	// Addr enables the server, e.g. :8080
	Addr string
}

var defaultConfig = Config{}

func init() {
	if val := os.Getenv("PURSUIT_HTTP_ADDR"); val != "" {
		defaultConfig.Addr = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Addr, "http", defaultConfig.Addr, "HTTP API listen address, empty to disable.")
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

// Enabled indicates a listen address is configured.
func (c *Config) Enabled() bool {
	return c.Addr != ""
}

// NewServer creates the Server.
func (c *Config) NewServer(conn l1.ControllerConn, stream *Streamer) *Server {
	s := NewServer(conn, stream)
	s.Addr = c.Addr
	return s
}
