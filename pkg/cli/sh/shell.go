package sh

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"
	"github.com/spf13/afero"

	"github.com/DevOats/picoPaper/pkg/bitmap"
	"github.com/DevOats/picoPaper/pkg/comm"
	"github.com/DevOats/picoPaper/pkg/device"
	"github.com/DevOats/picoPaper/pkg/env"
	"github.com/DevOats/picoPaper/pkg/remote"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	// Remote is the display TYPE/ID to connect over MQTT, or a ws:// URL,
	// instead of the configured serial port.
	Remote string

	Shell  *ishell.Shell
	Config *env.Config
	Fs     afero.Fs

	// Display is the connected display, nil when not connected.
	Display device.Display
	Target  string

	lastErr error
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "

	connectTimeout = 5 * time.Second
)

// ErrNotConnected is reported by commands requiring a display.
var ErrNotConnected = errors.New("not connected")

var (
	// flags

	evalOnly   bool
	outputJSON bool
	remoteRef  string

	// commands
	commands = []*ishell.Cmd{
		&ConnectCmd,
		&RemoteCmd,
		&DiscoverCmd,
		&DisconnectCmd,
		&IdentCmd,
		&ClearCmd,
		&SplashCmd,
		&DisplayCmd,
		&TextCmd,
		&ResetCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
	flag.StringVar(&remoteRef, "remote", remoteRef, "Display TYPE/ID registered on the MQTT broker, or ws://host:port/.")
}

// New creates a new shell.
func New(conf *env.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,
		Remote:      remoteRef,

		Shell:  ishell.New(),
		Config: conf,
		Fs:     afero.NewOsFs(),
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps command func requires a connection.
func MustBeConnected(fn func(c *ishell.Context, s *Shell) error) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		s := ShellFrom(c)
		if s.Display == nil {
			s.fail(c, ErrNotConnected)
			return
		}
		if err := fn(c, s); err != nil {
			s.fail(c, err)
		}
	}
}

func (s *Shell) fail(c *ishell.Context, err error) {
	s.lastErr = err
	c.Err(err)
}

// FormatInfo prints the device identification in an indented layout.
func FormatInfo(info *device.Info) string {
	var w bytes.Buffer
	fmt.Fprintln(&w, "Device info:")
	fmt.Fprintf(&w, "   Device:   %s\n", info.Device)
	fmt.Fprintf(&w, "   Version:  %s\n", info.Version)
	if info.Board != "" {
		fmt.Fprintf(&w, "   Board:    %s\n", info.Board)
	}
	if info.ID != "" {
		fmt.Fprintf(&w, "   ID:       %s\n", info.ID)
	}
	fmt.Fprintln(&w, "   Display:")
	fmt.Fprintf(&w, "      Type:       %s\n", info.Display.Type)
	fmt.Fprintf(&w, "      Size:       %s\n", info.Display.Size)
	fmt.Fprintln(&w, "      Resolution:")
	fmt.Fprintf(&w, "         Width:   %d\n", info.Display.Resolution.Width)
	fmt.Fprintf(&w, "         Height:  %d\n", info.Display.Resolution.Height)
	fmt.Fprintf(&w, "      Color:      %s\n", info.Display.Color)
	fmt.Fprintf(&w, "      Format:     %s", info.Display.Format)
	return w.String()
}

// FormatController prints ControllerInfo into friendly string for display.
func FormatController(info remote.ControllerInfo) string {
	var w bytes.Buffer
	fmt.Fprintf(&w, "%s", info.Ref.Name())
	if info.Meta.Description != "" {
		fmt.Fprintf(&w, ": %s", info.Meta.Description)
	}
	return w.String()
}

// ParseText parses "X Y TEXT..." into black text on white with the
// default font.
func ParseText(args []string) (device.Text, error) {
	if len(args) < 3 {
		return device.Text{}, errors.New("usage: text X Y TEXT")
	}
	x, err := strconv.Atoi(args[0])
	if err != nil {
		return device.Text{}, fmt.Errorf("invalid X %q", args[0])
	}
	y, err := strconv.Atoi(args[1])
	if err != nil {
		return device.Text{}, fmt.Errorf("invalid Y %q", args[1])
	}
	return device.Text{
		X:          x,
		Y:          y,
		Font:       device.DefaultFont,
		Foreground: device.Black,
		Background: device.White,
		Value:      strings.Join(args[2:], " "),
	}, nil
}

// Ident queries the display and formats the result.
func (s *Shell) Ident(ctx context.Context) (string, error) {
	info, err := s.Display.Identify(ctx)
	if err != nil {
		return "", err
	}
	if s.OutputJSON {
		out, err := json.Marshal(info)
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
	return FormatInfo(info), nil
}

// ShowImage loads the image file and shows it. Without a file the test
// pattern is shown.
func (s *Shell) ShowImage(ctx context.Context, path string) error {
	if path == "" {
		return s.Display.DisplayImage(ctx, bitmap.TestPattern(device.PanelWidth, device.PanelHeight))
	}
	img, err := bitmap.Load(s.Fs, path)
	if err != nil {
		return err
	}
	return s.Display.DisplayImage(ctx, img)
}

// DiscoverControllers discovers displays registered on the broker.
func (s *Shell) DiscoverControllers() ([]remote.ControllerInfo, error) {
	connector, err := s.Config.NewConnector()
	if err != nil {
		return nil, err
	}
	return connector.Discover(context.Background())
}

// SelectController discovers displays and asks for a choice.
func (s *Shell) SelectController() (*remote.ControllerInfo, error) {
	infoList, err := s.DiscoverControllers()
	if err != nil {
		return nil, err
	}
	if len(infoList) == 0 {
		return nil, errors.New("no display discovered")
	}
	var index int
	if len(infoList) > 1 {
		if !s.Interactive {
			return nil, errors.New("more than 1 displays discovered in non-interactive mode")
		}
		items := make([]string, len(infoList))
		for n, info := range infoList {
			items[n] = FormatController(info)
		}
		index = s.Shell.MultiChoice(items, "Which one to connect?")
		if index < 0 {
			return nil, errors.New("no display selected")
		}
	}
	return &infoList[index], nil
}

// ConnectPort connects the display on a serial port.
func (s *Shell) ConnectPort(port string) error {
	d := s.Config.NewDevice()
	if link, ok := d.Link.(*comm.Link); ok && s.Shell != nil {
		link.SetDebugHandler(comm.HandleMessageFunc(func(msg comm.Message) {
			s.Shell.Printf("device: %s\n", msg.Payload)
		}))
	}
	if err := d.Connect(port); err != nil {
		return err
	}
	s.attach(d, port)
	return nil
}

// ConnectRemote connects a display registered on the broker.
func (s *Shell) ConnectRemote(ref remote.ControllerRef) error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	conn, err := s.Config.Connect(ctx, ref)
	if err != nil {
		return err
	}
	s.attach(conn, ref.Name())
	return nil
}

// ConnectURL connects a display served over websocket.
func (s *Shell) ConnectURL(url string) error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	conn, err := remote.DialWS(ctx, url)
	if err != nil {
		return err
	}
	s.attach(conn, url)
	return nil
}

// ConnectTarget connects a ws:// URL or a TYPE/ID on the broker.
func (s *Shell) ConnectTarget(target string) error {
	if isWSURL(target) {
		return s.ConnectURL(target)
	}
	ref, err := remote.ParseRef(target)
	if err != nil {
		return err
	}
	return s.ConnectRemote(ref)
}

func isWSURL(target string) bool {
	return strings.HasPrefix(target, "ws://") || strings.HasPrefix(target, "wss://")
}

func (s *Shell) attach(display device.Display, target string) {
	s.Close()
	s.Display, s.Target = display, target
	glog.Infof("connected %s", target)
	if s.Shell != nil {
		s.Shell.SetPrompt(fmt.Sprintf("%s > ", target))
	}
}

func (s *Shell) detach(release func(device.Display) error) {
	if s.Display == nil {
		return
	}
	if err := release(s.Display); err != nil {
		glog.Warningf("release %s: %v", s.Target, err)
	}
	s.Display, s.Target = nil, ""
	if s.Shell != nil {
		s.Shell.SetPrompt(unconnectedPrompt)
	}
}

// Disconnect clears the panel and releases the display.
func (s *Shell) Disconnect() {
	s.detach(device.Display.Disconnect)
}

// Close releases the display and leaves the panel content.
func (s *Shell) Close() {
	s.detach(device.Display.Close)
}

func (s *Shell) autoConnect() error {
	switch {
	case s.Remote != "":
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", s.Remote)
		}
		if err := s.ConnectTarget(s.Remote); err != nil {
			return fmt.Errorf("connect %q failed: %w", s.Remote, err)
		}
	case s.Config.Port != "":
		if err := s.ConnectPort(s.Config.Port); err != nil {
			return fmt.Errorf("connect %q failed: %w", s.Config.Port, err)
		}
	}
	return nil
}

// Run runs the shell. With args a single command runs and the panel
// content is kept. Leaving the interactive shell clears the panel.
func (s *Shell) Run(args ...string) error {
	if err := s.autoConnect(); err != nil {
		return err
	}

	if len(args) > 0 {
		defer s.Close()
		if err := s.Shell.Process(args...); err != nil {
			return err
		}
		return s.lastErr
	}
	if !s.Interactive {
		s.Close()
		return errors.New("command expected")
	}
	s.Shell.Run()
	s.Disconnect()
	return nil
}

func printOK(c *ishell.Context) {
	c.Println("OK")
}

var (
	// ConnectCmd connects a display on a serial port.
	ConnectCmd = ishell.Cmd{
		Name: "connect",
		Help: "PORT",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			if len(c.Args) != 1 {
				s.fail(c, errors.New("usage: connect PORT"))
				return
			}
			if err := s.ConnectPort(c.Args[0]); err != nil {
				s.fail(c, err)
			}
		},
	}

	// RemoteCmd connects a display registered on the broker or served over
	// websocket.
	RemoteCmd = ishell.Cmd{
		Name: "remote",
		Help: "[TYPE/ID | ws://HOST:PORT/]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			var err error
			if len(c.Args) > 0 {
				err = s.ConnectTarget(c.Args[0])
			} else {
				var info *remote.ControllerInfo
				if info, err = s.SelectController(); err == nil {
					err = s.ConnectRemote(info.Ref)
				}
			}
			if err != nil {
				s.fail(c, err)
			}
		},
	}

	// DiscoverCmd discovers displays registered on the broker.
	DiscoverCmd = ishell.Cmd{
		Name:    "discover",
		Aliases: []string{"list", "l"},
		Help:    "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			infoList, err := s.DiscoverControllers()
			if err != nil {
				s.fail(c, err)
				return
			}
			if s.OutputJSON {
				if len(infoList) == 0 {
					// in case infoList is nil, make it empty slice.
					infoList = []remote.ControllerInfo{}
				}
				out, err := json.Marshal(infoList)
				if err != nil {
					s.fail(c, err)
					return
				}
				c.Println(string(out))
				return
			}
			if len(infoList) == 0 {
				c.Println("No displays found")
				return
			}
			for _, info := range infoList {
				c.Println(FormatController(info))
			}
		},
	}

	// DisconnectCmd clears the panel and disconnects.
	DisconnectCmd = ishell.Cmd{
		Name: "disconnect",
		Help: "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}

	// IdentCmd prints the device identification.
	IdentCmd = ishell.Cmd{
		Name:    "ident",
		Aliases: []string{"i"},
		Help:    "",
		Func: MustBeConnected(func(c *ishell.Context, s *Shell) error {
			out, err := s.Ident(context.Background())
			if err == nil {
				c.Println(out)
			}
			return err
		}),
	}

	// ClearCmd clears the panel.
	ClearCmd = ishell.Cmd{
		Name:    "clear",
		Aliases: []string{"c"},
		Help:    "",
		Func: MustBeConnected(func(c *ishell.Context, s *Shell) error {
			err := s.Display.ClearDisplay(context.Background())
			if err == nil {
				printOK(c)
			}
			return err
		}),
	}

	// SplashCmd shows the splash screen.
	SplashCmd = ishell.Cmd{
		Name:    "splash",
		Aliases: []string{"s"},
		Help:    "",
		Func: MustBeConnected(func(c *ishell.Context, s *Shell) error {
			err := s.Display.ShowSplash(context.Background())
			if err == nil {
				printOK(c)
			}
			return err
		}),
	}

	// DisplayCmd uploads and shows an image, the test pattern by default.
	DisplayCmd = ishell.Cmd{
		Name:    "display",
		Aliases: []string{"d"},
		Help:    "[FILE]",
		Func: MustBeConnected(func(c *ishell.Context, s *Shell) error {
			var path string
			if len(c.Args) > 0 {
				path = c.Args[0]
			}
			err := s.ShowImage(context.Background(), path)
			if err == nil {
				printOK(c)
			}
			return err
		}),
	}

	// TextCmd draws a line of text.
	TextCmd = ishell.Cmd{
		Name:    "text",
		Aliases: []string{"t"},
		Help:    "X Y TEXT",
		Func: MustBeConnected(func(c *ishell.Context, s *Shell) error {
			text, err := ParseText(c.Args)
			if err != nil {
				return err
			}
			if err = s.Display.DrawString(context.Background(), text); err == nil {
				printOK(c)
			}
			return err
		}),
	}

	// ResetCmd resets the protocol state of the device.
	ResetCmd = ishell.Cmd{
		Name:    "reset",
		Aliases: []string{"r"},
		Help:    "",
		Func: MustBeConnected(func(c *ishell.Context, s *Shell) error {
			err := s.Display.ResetLink()
			if err == nil {
				printOK(c)
			}
			return err
		}),
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	conf, err := env.NewConfig()
	if err != nil {
		glog.Exitf("config: %v", err)
	}
	if err = New(conf).Run(flag.Args()...); err != nil {
		glog.Exit(err)
	}
}
