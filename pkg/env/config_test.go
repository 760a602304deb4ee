package env

import (
	"flag"
	"io"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const testConfigYAML = `
port: /dev/ttyACM1
response_timeout: 5s
disconnect_grace: 250ms
mqtt_url: mqtt://broker:1883/office/
id: lobby
description: Lobby sign
`

func newFlagSet() *flag.FlagSet {
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	set.SetOutput(io.Discard)
	return set
}

func TestApplyEnv(t *testing.T) {
	vars := map[string]string{
		EnvPort:       "COM4",
		EnvMQTTURL:    "mqtt://other/",
		EnvConfigFile: "/etc/picopaper.yaml",
	}
	conf := Config{ID: "machine"}
	applyEnv(&conf, func(name string) string { return vars[name] })
	require.Equal(t, Config{
		Port:          "COM4",
		MQTTBrokerURL: "mqtt://other/",
		ID:            "machine",
		ConfigFile:    "/etc/picopaper.yaml",
	}, conf)
}

func TestLoadFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/picopaper.yaml", []byte(testConfigYAML), 0644))

	conf := Config{ResponseTimeout: time.Second, ID: "machine"}
	require.NoError(t, conf.LoadFile(fs, "/etc/picopaper.yaml"))
	require.Equal(t, Config{
		Port:            "/dev/ttyACM1",
		ResponseTimeout: 5 * time.Second,
		DisconnectGrace: 250 * time.Millisecond,
		MQTTBrokerURL:   "mqtt://broker:1883/office/",
		ID:              "lobby",
		Description:     "Lobby sign",
	}, conf)

	require.Error(t, conf.LoadFile(fs, "/missing.yaml"))
	require.NoError(t, afero.WriteFile(fs, "/bad.yaml", []byte("port: [1"), 0644))
	require.Error(t, conf.LoadFile(fs, "/bad.yaml"))
}

func TestFlagsPrecedence(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/cfg.yaml", []byte(testConfigYAML), 0644))
	base := Config{
		Port:            "COM1",
		ResponseTimeout: 20 * time.Second,
		MQTTBrokerURL:   "mqtt://localhost:1883/picopaper/",
		ID:              "machine",
	}

	testCases := []struct {
		name   string
		args   []string
		expect Config
	}{
		{
			name:   "defaults",
			expect: base,
		},
		{
			name: "flags only",
			args: []string{"-port", "COM7", "-timeout", "3s"},
			expect: Config{
				Port:            "COM7",
				ResponseTimeout: 3 * time.Second,
				MQTTBrokerURL:   base.MQTTBrokerURL,
				ID:              "machine",
			},
		},
		{
			name: "listen",
			args: []string{"-listen", ":8086", "-mqtt", ""},
			expect: Config{
				Port:            "COM1",
				ResponseTimeout: 20 * time.Second,
				ID:              "machine",
				Listen:          ":8086",
			},
		},
		{
			name: "file over defaults",
			args: []string{"-config", "/cfg.yaml"},
			expect: Config{
				Port:            "/dev/ttyACM1",
				ResponseTimeout: 5 * time.Second,
				DisconnectGrace: 250 * time.Millisecond,
				MQTTBrokerURL:   "mqtt://broker:1883/office/",
				ID:              "lobby",
				Description:     "Lobby sign",
				ConfigFile:      "/cfg.yaml",
			},
		},
		{
			name: "explicit flags over file",
			args: []string{"-config", "/cfg.yaml", "-port", "COM9", "-id", "hall"},
			expect: Config{
				Port:            "COM9",
				ResponseTimeout: 5 * time.Second,
				DisconnectGrace: 250 * time.Millisecond,
				MQTTBrokerURL:   "mqtt://broker:1883/office/",
				ID:              "hall",
				Description:     "Lobby sign",
				ConfigFile:      "/cfg.yaml",
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			set := newFlagSet()
			flags := NewFlags(set, base)
			require.NoError(t, set.Parse(tc.args))
			conf, err := flags.Config(fs)
			require.NoError(t, err)
			require.Equal(t, tc.expect, *conf)
		})
	}
}

func TestFlagsInvalid(t *testing.T) {
	set := newFlagSet()
	flags := NewFlags(set, Config{ResponseTimeout: time.Second})
	require.NoError(t, set.Parse([]string{"-timeout", "0s"}))
	_, err := flags.Config(afero.NewMemMapFs())
	require.Error(t, err)

	set = newFlagSet()
	flags = NewFlags(set, Config{ResponseTimeout: time.Second})
	require.NoError(t, set.Parse([]string{"-config", "/nope.yaml"}))
	_, err = flags.Config(afero.NewMemMapFs())
	require.Error(t, err)
}

func TestConfigRef(t *testing.T) {
	conf := Config{ID: "lobby"}
	require.Equal(t, "picopaper/lobby", conf.Ref().Name())
	_, err := (&Config{}).OpenDevice()
	require.Error(t, err)
}

func TestMachineID(t *testing.T) {
	require.NotEmpty(t, MachineID())
	require.NotEmpty(t, Default().ID)
}
