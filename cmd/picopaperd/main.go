package main

//go-build: CGO_ENABLED=0

import (
	"flag"

	"github.com/golang/glog"

	"github.com/DevOats/picoPaper/pkg/comm"
	"github.com/DevOats/picoPaper/pkg/env"
	fx "github.com/DevOats/picoPaper/pkg/framework"
	"github.com/DevOats/picoPaper/pkg/remote"
)

func init() {
	env.SetupFlags()
}

func main() {
	flag.Parse()
	defer glog.Flush()

	conf, err := env.NewConfig()
	if err != nil {
		glog.Exitf("config: %v", err)
	}
	if conf.MQTTBrokerURL == "" && conf.Listen == "" {
		glog.Exit("either -mqtt or -listen is required")
	}
	info := remote.ControllerInfo{
		Ref:  conf.Ref(),
		Meta: remote.ControllerMeta{Description: conf.Description},
	}
	if conf.MQTTBrokerURL != "" && !info.Ref.IsValid() {
		glog.Exitf("invalid display id %q", conf.ID)
	}
	d, err := conf.OpenDevice()
	if err != nil {
		glog.Exitf("open device: %v", err)
	}
	defer d.Disconnect()

	runner := fx.NewRunner().HandleSignals()
	if conf.MQTTBrokerURL != "" {
		reg, err := remote.NewRegistrar(conf.MQTTBrokerURL, info, d)
		if err != nil {
			d.Close()
			glog.Exitf("registrar: %v", err)
		}
		// device debug lines go to broker clients
		if link, ok := d.Link.(*comm.Link); ok {
			link.SetDebugHandler(reg.Server)
		}
		runner.Go(reg)
	}
	if conf.Listen != "" {
		runner.Go(&remote.WSServer{Addr: conf.Listen, Display: d})
	}
	if err = runner.Wait(); err != nil {
		glog.Errorf("%v", err)
	}
}
