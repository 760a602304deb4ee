// Package env assembles the runtime configuration from defaults,
// environment variables, an optional YAML file and command line flags.
package env

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/DevOats/picoPaper/pkg/device"
	"github.com/DevOats/picoPaper/pkg/remote"
)

// Config provides common options for the tools.
type Config struct {
	// Port is the serial port of the display, e.g. /dev/ttyACM0 or COM4.
	Port            string        `yaml:"port"`
	ResponseTimeout time.Duration `yaml:"response_timeout"`
	DisconnectGrace time.Duration `yaml:"disconnect_grace"`

	// MQTTBrokerURL specifies the MQTT broker to use.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string `yaml:"mqtt_url"`
	// ID is the controller id the display is registered with.
	ID          string `yaml:"id"`
	Description string `yaml:"description"`
	// Listen is the address the daemon serves websocket clients on.
	Listen string `yaml:"listen"`

	ConfigFile string `yaml:"-"`
}

// Environment variables.
const (
	EnvPort       = "PICOPAPER_PORT"
	EnvMQTTURL    = "PICOPAPER_MQTT_URL"
	EnvID         = "PICOPAPER_ID"
	EnvConfigFile = "PICOPAPER_CONFIG"
)

var defaultConfig = Config{
	ResponseTimeout: device.DefaultResponseTimeout,
	MQTTBrokerURL:   "mqtt://localhost:1883/picopaper/",
}

var cmdFlags *Flags

func init() {
	applyEnv(&defaultConfig, os.Getenv)
	if defaultConfig.ID == "" {
		defaultConfig.ID = MachineID()
	}
}

func applyEnv(c *Config, getenv func(string) string) {
	if val := getenv(EnvPort); val != "" {
		c.Port = val
	}
	if val := getenv(EnvMQTTURL); val != "" {
		c.MQTTBrokerURL = val
	}
	if val := getenv(EnvID); val != "" {
		c.ID = val
	}
	if val := getenv(EnvConfigFile); val != "" {
		c.ConfigFile = val
	}
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	cmdFlags = NewFlags(flag.CommandLine, defaultConfig)
}

// NewConfig creates a Config from defaults, the config file and the
// command line flags set by SetupFlags.
func NewConfig() (*Config, error) {
	fs := afero.NewOsFs()
	if cmdFlags != nil {
		return cmdFlags.Config(fs)
	}
	conf := defaultConfig
	if err := conf.loadConfigFile(fs); err != nil {
		return nil, err
	}
	return &conf, nil
}

// LoadFile overlays the YAML file at path onto c.
func (c *Config) LoadFile(fs afero.Fs, path string) error {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err = yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadConfigFile(fs afero.Fs) error {
	if c.ConfigFile == "" {
		return nil
	}
	return c.LoadFile(fs, c.ConfigFile)
}

// Validate checks the config is usable.
func (c *Config) Validate() error {
	if c.ResponseTimeout <= 0 {
		return fmt.Errorf("response timeout must be positive, got %v", c.ResponseTimeout)
	}
	if c.DisconnectGrace < 0 {
		return fmt.Errorf("disconnect grace must not be negative, got %v", c.DisconnectGrace)
	}
	return nil
}

// Ref is the controller ref the display is registered as.
func (c *Config) Ref() remote.ControllerRef {
	return remote.ControllerRef{Type: remote.ControllerType, ID: c.ID}
}

// NewDevice creates a Device on a serial link using current config.
// The port is not opened.
func (c *Config) NewDevice() *device.Device {
	d := device.NewSerial()
	d.ResponseTimeout = c.ResponseTimeout
	d.DisconnectGrace = c.DisconnectGrace
	return d
}

// OpenDevice creates a Device and connects to the configured port.
func (c *Config) OpenDevice() (*device.Device, error) {
	if c.Port == "" {
		return nil, fmt.Errorf("serial port must be specified")
	}
	d := c.NewDevice()
	if err := d.Connect(c.Port); err != nil {
		return nil, err
	}
	return d, nil
}

// NewConnector creates a Connector to displays registered on the broker.
func (c *Config) NewConnector() (*remote.Connector, error) {
	if c.MQTTBrokerURL == "" {
		return nil, fmt.Errorf("MQTT broker URL must be specified")
	}
	return remote.NewConnector(c.MQTTBrokerURL)
}

// Connect connects to a display registered on the broker.
func (c *Config) Connect(ctx context.Context, ref remote.ControllerRef) (*remote.Conn, error) {
	if !ref.IsValid() {
		return nil, fmt.Errorf("display type and id must be specified")
	}
	connector, err := c.NewConnector()
	if err != nil {
		return nil, err
	}
	return connector.Connect(ctx, ref)
}
