package main

import (
	"flag"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/golang/glog"

	"github.com/DevOats/picoPaper/pkg/env"
	"github.com/DevOats/picoPaper/pkg/remote"
)

var mqttURL = env.Default().MQTTBrokerURL

func init() {
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func describe(topic string, payload []byte) string {
	if strings.HasSuffix(topic, "/meta") {
		return fmt.Sprintf("%s: %s", topic, string(payload))
	}
	typed, err := remote.DecodeTyped(payload)
	if err != nil {
		return fmt.Sprintf("%s: bad message: %v", topic, err)
	}
	msg, err := typed.Decode()
	if err != nil {
		return fmt.Sprintf("%s: decode error: (type_id=%x) %v", topic, typed.TypeId, err)
	}
	if m, ok := msg.(*remote.DisplayImage); ok {
		return fmt.Sprintf("%s: #%d [DisplayImage] %d bytes", topic, typed.Sequence, len(m.Image))
	}
	return fmt.Sprintf("%s: #%d [%s] %s", topic, typed.Sequence,
		reflect.Indirect(reflect.ValueOf(msg)).Type().Name(),
		msg.(remote.SerializableMessage).Serializable().String())
}

func main() {
	flag.Parse()

	q, err := remote.NewQueueFromURL(mqttURL)
	if err != nil {
		glog.Exit(err)
	}
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		glog.Exit(token.Error())
	}
	q.Sub("#", remote.Handler(func(topic string, payload []byte) {
		fmt.Printf("%s %s\n", time.Now().Format("15:04:05.000000"), describe(topic, payload))
	}))
	<-(chan struct{})(nil)
}
