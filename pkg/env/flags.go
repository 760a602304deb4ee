package env

import (
	"flag"

	"github.com/spf13/afero"
)

// Flags binds Config fields to command line flags. Only flags given on
// the command line override the config file.
type Flags struct {
	Set *flag.FlagSet

	base   Config
	values Config
}

var flagFields = map[string]func(dst, src *Config){
	"port":             func(dst, src *Config) { dst.Port = src.Port },
	"timeout":          func(dst, src *Config) { dst.ResponseTimeout = src.ResponseTimeout },
	"disconnect-grace": func(dst, src *Config) { dst.DisconnectGrace = src.DisconnectGrace },
	"mqtt":             func(dst, src *Config) { dst.MQTTBrokerURL = src.MQTTBrokerURL },
	"id":               func(dst, src *Config) { dst.ID = src.ID },
	"description":      func(dst, src *Config) { dst.Description = src.Description },
	"listen":           func(dst, src *Config) { dst.Listen = src.Listen },
	"config":           func(dst, src *Config) { dst.ConfigFile = src.ConfigFile },
}

// NewFlags registers the config flags on set with defaults from base.
func NewFlags(set *flag.FlagSet, base Config) *Flags {
	f := &Flags{Set: set, base: base, values: base}
	set.StringVar(&f.values.Port, "port", base.Port, "Serial port of the display")
	set.DurationVar(&f.values.ResponseTimeout, "timeout", base.ResponseTimeout, "Time to wait for a device response")
	set.DurationVar(&f.values.DisconnectGrace, "disconnect-grace", base.DisconnectGrace, "Delay before closing the port after the final clear")
	set.StringVar(&f.values.MQTTBrokerURL, "mqtt", base.MQTTBrokerURL, "MQTT broker URL")
	set.StringVar(&f.values.ID, "id", base.ID, "Display ID on the broker")
	set.StringVar(&f.values.Description, "description", base.Description, "Display description on the broker")
	set.StringVar(&f.values.Listen, "listen", base.Listen, "Address to serve websocket clients on, e.g. :8086")
	set.StringVar(&f.values.ConfigFile, "config", base.ConfigFile, "YAML config file")
	return f
}

// Config builds the config: base values, then the config file, then the
// flags set explicitly.
func (f *Flags) Config(fs afero.Fs) (*Config, error) {
	set := make(map[string]bool)
	f.Set.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	conf := f.base
	if set["config"] {
		conf.ConfigFile = f.values.ConfigFile
	}
	if err := conf.loadConfigFile(fs); err != nil {
		return nil, err
	}
	for name := range set {
		if copyField, ok := flagFields[name]; ok {
			copyField(&conf, &f.values)
		}
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}
