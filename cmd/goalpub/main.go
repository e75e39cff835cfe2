package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/pursuit/pkg/feed"
	"github.com/robotalks/pursuit/pkg/l1/comm/mqtt"
)

var (
	brokerURL = "mqtt://localhost:1883"
	topic     = feed.DefaultTopic
	format    = feed.FormatJSON
	qos       uint
	retain    bool
	xArg      string
	yArg      string
)

func init() {
	if val := os.Getenv("PURSUIT_FEED_URL"); val != "" {
		brokerURL = val
	}
	flag.StringVar(&brokerURL, "mqtt", brokerURL, "MQTT broker URL, ws:// and wss:// are supported.")
	flag.StringVar(&topic, "topic", topic, "Topic to publish to.")
	flag.StringVar(&format, "format", format, "Payload format: json or csv.")
	flag.UintVar(&qos, "qos", qos, "MQTT QoS, 0 to 2.")
	flag.BoolVar(&retain, "retain", retain, "Publish with retain.")
	flag.StringVar(&xArg, "x", xArg, "Target X (mm), interactive when X or Y is absent.")
	flag.StringVar(&yArg, "y", yArg, "Target Y (mm), interactive when X or Y is absent.")
}

func publishArgs(pub *feed.Publisher, c *ishell.Context) {
	target, err := feed.ParseLine(strings.Join(c.Args, " "))
	if err != nil {
		c.Err(err)
		return
	}
	if err := pub.Publish(target.X, target.Y); err != nil {
		c.Err(err)
		return
	}
	c.Printf("OK -> (%g, %g)\n", target.X, target.Y)
}

func main() {
	flag.Parse()
	if qos > 2 {
		log.Fatalf("invalid qos %d", qos)
	}
	q, err := mqtt.NewQueueFromURL(brokerURL)
	if err != nil {
		log.Fatalln(err)
	}
	if qos > 0 {
		q.QoS = byte(qos)
	}
	if err := q.ConnectWait(feed.DefaultPublishTimeout); err != nil {
		log.Fatalln(err)
	}
	defer q.Close()
	pub := &feed.Publisher{Queue: q, Topic: topic, Format: format, Retain: retain}

	if xArg != "" && yArg != "" {
		x, err := strconv.ParseFloat(xArg, 64)
		if err != nil {
			log.Fatalf("invalid x: %v", err)
		}
		y, err := strconv.ParseFloat(yArg, 64)
		if err != nil {
			log.Fatalf("invalid y: %v", err)
		}
		if err := pub.Publish(x, y); err != nil {
			log.Fatalln(err)
		}
		log.Println("OK")
		return
	}

	shell := ishell.New()
	shell.SetPrompt("goal > ")
	shell.Printf("Publishing to %s, enter: X Y\n", topic)
	shell.AddCmd(&ishell.Cmd{
		Name: "goal",
		Help: "X Y",
		Func: func(c *ishell.Context) { publishArgs(pub, c) },
	})
	shell.NotFound(func(c *ishell.Context) { publishArgs(pub, c) })
	shell.Run()
}
