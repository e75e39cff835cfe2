package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"reflect"
	"strings"

	"github.com/robotalks/pursuit/pkg/feed"
	"github.com/robotalks/pursuit/pkg/l1/comm/mqtt"
	"github.com/robotalks/pursuit/pkg/l1/msgs"
	"github.com/robotalks/pursuit/pkg/planner"
)

var (
	mqttURL   = "mqtt://localhost:1883/pursuit/"
	planTopic = planner.DefaultStatusTopic
)

func init() {
	if val := os.Getenv("PURSUIT_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
	flag.StringVar(&planTopic, "plan-topic", planTopic, "Topic of planner status on the feed broker, empty to skip.")
	feed.SetupFlags()
}

func logL1(topic string, payload []byte) {
	if info, ok := mqtt.ParseMeta(topic, payload); ok {
		log.Printf("%s: online %q %v", info.Ref.Name(), info.Meta.Description, info.Meta.Labels)
		return
	}
	if strings.HasSuffix(topic, "/"+mqtt.TopicMeta) {
		log.Printf("%s: offline", strings.TrimSuffix(topic, "/"+mqtt.TopicMeta))
		return
	}
	typed, err := msgs.DecodeTyped(payload)
	if err != nil {
		log.Printf("%s: bad message: %v", topic, err)
		return
	}
	msg, err := typed.Decode()
	if err != nil {
		log.Printf("%s: decode error: (type_id=%x) %v", topic, typed.TypeID, err)
		return
	}
	log.Printf("%s: [%s] %s", topic,
		reflect.Indirect(reflect.ValueOf(msg)).Type().Name(),
		msg.(msgs.SerializableMessage).Serializable().String())
}

func logGoal(topic string, payload []byte) {
	target, ok := feed.ParsePayload(payload)
	if !ok {
		log.Printf("%s: bad goal: %q", topic, payload)
		return
	}
	var goal feed.Goal
	if json.Unmarshal(payload, &goal) == nil && goal.TMs != 0 {
		log.Printf("%s: goal #%d (%.2f, %.2f) t_ms=%d", topic, goal.Seq, target.X, target.Y, goal.TMs)
		return
	}
	log.Printf("%s: goal (%.2f, %.2f)", topic, target.X, target.Y)
}

func logPlan(topic string, payload []byte) {
	var st planner.Status
	if err := json.Unmarshal(payload, &st); err != nil {
		log.Printf("%s: bad status: %v", topic, err)
		return
	}
	log.Printf("%s: ok=%v mode=%s paused=%v (%.2f, %.2f) %s", topic, st.OK, st.Mode, st.Paused, st.X, st.Y, st.Note)
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	q.Sub("#", mqtt.Handler(logL1))
	q.Connect()

	if conf := feed.NewConfig(); conf.Enabled() {
		fq, err := mqtt.NewQueueFromURL(conf.BrokerURL)
		if err != nil {
			log.Fatalln(err)
		}
		fq.Sub(conf.Topic, mqtt.Handler(logGoal))
		if planTopic != "" {
			fq.Sub(planTopic, mqtt.Handler(logPlan))
		}
		fq.Connect()
	}
	<-(chan struct{})(nil)
}
