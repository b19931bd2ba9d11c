package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	// Packages
	kong "github.com/alecthomas/kong"
	client "github.com/mutablelogic/go-client"
	config "github.com/mutablelogic/go-llamachat/pkg/config"
	logger "github.com/mutablelogic/go-llamachat/pkg/logger"
	manager "github.com/mutablelogic/go-llamachat/pkg/manager"
	version "github.com/mutablelogic/go-llamachat/pkg/version"
	otelglobal "go.opentelemetry.io/otel"
	trace "go.opentelemetry.io/otel/trace"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

type Globals struct {
	// Debugging
	Debug   bool   `name:"debug" help:"Enable debug output"`
	Verbose bool   `name:"verbose" help:"Enable verbose output"`
	Log     string `name:"log" enum:"text,json" default:"text" help:"Log format (text, json)"`

	// Server
	Port   uint16 `name:"port" short:"p" env:"LLAMACHAT_PORT" help:"Port of the llama.cpp server (overrides the configuration file)"`
	Config string `name:"config" type:"path" env:"LLAMACHAT_CONFIG" help:"Path to a YAML configuration file"`

	// Private fields
	ctx        context.Context
	execName   string
	config     config.Config
	logger     *logger.Logger
	tracer     trace.Tracer
	clientOpts []client.ClientOpt
	manager    *manager.Manager
}

type CLI struct {
	Globals

	// Commands
	Health   HealthCommand   `cmd:"" help:"Check the llama.cpp server is ready"`
	Props    PropsCommand    `cmd:"" help:"Show the loaded model and the files which can be attached"`
	Chat     ChatCommand     `cmd:"" default:"withargs" help:"Start an interactive chat session"`
	Write    WriteCommand    `cmd:"" help:"Continue a prompt with raw text completion"`
	Settings SettingsCommand `cmd:"" help:"Print the effective configuration"`
	Version  VersionCommand  `cmd:"" help:"Print version information"`
}

////////////////////////////////////////////////////////////////////////////////
// MAIN

func main() {
	// Create a cli parser
	cli := CLI{}
	cmd := kong.Parse(&cli,
		kong.Name(execName()),
		kong.Description("Chat and text completion for a local llama.cpp server"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	)

	// Create a context which is cancelled on termination. Interrupts are
	// handled by the interactive commands, which stop generation first.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer cancel()

	// Set up the globals
	if err := cli.Globals.init(ctx); err != nil {
		cmd.FatalIfErrorf(err)
		return
	}

	// Run the command
	if err := cmd.Run(&cli.Globals); err != nil {
		cmd.FatalIfErrorf(err)
		return
	}
}

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (g *Globals) init(ctx context.Context) error {
	g.ctx = ctx
	g.execName = execName()
	g.tracer = otelglobal.Tracer(g.execName)

	// Logger
	level, format := "info", logger.Text
	if g.Debug {
		level = "debug"
	}
	if g.Log == "json" {
		format = logger.JSON
	}
	g.logger = logger.New(os.Stderr, format, level)

	// Configuration, with the port overridden from the command line
	if cfg, err := config.Load(g.Config); err != nil {
		return err
	} else {
		g.config = cfg
	}
	if g.Port != 0 {
		g.config.Port = g.Port
	}

	// Client options
	g.clientOpts = []client.ClientOpt{
		client.OptUserAgent(version.UserAgent(g.execName)),
	}
	if g.Debug || g.Verbose {
		g.clientOpts = append(g.clientOpts, client.OptTrace(os.Stderr, g.Verbose))
	}

	// Manager
	if mgr, err := manager.New(
		manager.WithLogger(g.logger),
		manager.WithTracer(g.tracer),
		manager.WithMeter(otelglobal.Meter(g.execName)),
		manager.WithClientOpts(g.clientOpts...),
		manager.WithNotifier(func(w manager.Warning) {
			fmt.Fprintln(os.Stderr, warningLabel+w.String())
		}),
	); err != nil {
		return err
	} else {
		g.manager = mgr
	}

	// Return success
	return nil
}

func execName() string {
	// The name of the executable
	name, err := os.Executable()
	if err != nil {
		panic(err)
	} else {
		return filepath.Base(name)
	}
}

// notifyInterrupt returns a channel which receives interrupts, and a
// function to stop receiving them
func notifyInterrupt() (<-chan os.Signal, func()) {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	return interrupt, func() { signal.Stop(interrupt) }
}

// interruptible runs fn, stopping the generation in progress on each
// interrupt until fn returns
func (g *Globals) interruptible(interrupt <-chan os.Signal, fn func() error) error {
	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()
	for {
		select {
		case err := <-done:
			return err
		case <-interrupt:
			if g.manager.Stop() {
				g.logger.Debug(g.ctx, "stopping generation")
			}
		}
	}
}
