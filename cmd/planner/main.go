package main

//go-build: CGO_ENABLED=0

import (
	"flag"

	"github.com/golang/glog"

	fx "github.com/robotalks/pursuit/pkg/framework"
	"github.com/robotalks/pursuit/pkg/planner"
)

func init() {
	planner.SetupFlags()
}

func main() {
	flag.Parse()

	conf := planner.NewConfig()
	svc, err := conf.NewService()
	if err != nil {
		glog.Exit(err)
	}
	glog.Infof("planner: cmd %q, goals %q every %v", conf.CmdTopic, conf.GoalTopic, conf.Interval)
	fx.NewLoopWithInterval(conf.Interval / 2).Add(svc).RunOrFail()
}
