package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/pursuit/pkg/api"
	"github.com/robotalks/pursuit/pkg/feed"
	fx "github.com/robotalks/pursuit/pkg/framework"
	"github.com/robotalks/pursuit/pkg/l1"
	"github.com/robotalks/pursuit/pkg/l1/comm"
	env "github.com/robotalks/pursuit/pkg/l1/env/controller"
	"github.com/robotalks/pursuit/pkg/sim/bots/tracker"
	"github.com/robotalks/pursuit/pkg/sim/driver"
	"github.com/robotalks/pursuit/pkg/sim/visualization/see"
)

var (
	frameInterval = 16 * time.Millisecond
	seeEnabled    bool
)

func init() {
	env.SetControllerType(tracker.ControllerType, l1.ControllerMeta{Description: "Simulation: pure pursuit differential drive"})
	env.SetupFlags()
	driver.SetupFlags()
	tracker.SetupFlags()
	feed.SetupFlags()
	see.SetupFlags()
	api.SetupFlags()
	flag.DurationVar(&frameInterval, "frame-interval", frameInterval, "Interval between frames.")
	flag.BoolVar(&seeEnabled, "see", seeEnabled, "Write visualization messages to stdout.")
}

func main() {
	flag.Parse()

	env := env.NewConfig().MustNewEnv()
	bot, err := tracker.NewConfig().NewController(env.Registrar, driver.NewConfig())
	if err != nil {
		glog.Exit(err)
	}

	loop := fx.NewLoopWithInterval(frameInterval)
	if seeEnabled {
		bot.Presenter.Renderer = see.NewConfig().NewAdapter()
	}
	if conf := api.NewConfig(); conf.Enabled() {
		stream := api.NewStreamer()
		bot.Charts = stream
		loop.AddRunnable(fx.NamedRun("http-api", conf.NewServer(comm.NewLocalConn(loop), stream)))
	}
	if conf := feed.NewConfig(); conf.Enabled() {
		sub, err := conf.NewSubscriber()
		if err != nil {
			glog.Exit(err)
		}
		loop.Add(sub)
	}

	loop.Add(env, bot).RunOrFail()
}
