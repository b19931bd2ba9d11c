package main

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	// Packages
	client "github.com/mutablelogic/go-client"
	otel "github.com/mutablelogic/go-client/pkg/otel"
	llamachat "github.com/mutablelogic/go-llamachat"
	llamacpp "github.com/mutablelogic/go-llamachat/pkg/llamacpp"
	schema "github.com/mutablelogic/go-llamachat/pkg/schema"
	attribute "go.opentelemetry.io/otel/attribute"
	errgroup "golang.org/x/sync/errgroup"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type HealthCommand struct{}

type PropsCommand struct {
	Ports []uint16 `arg:"" optional:"" help:"Ports of the llama.cpp servers to query (defaults to the configured port)"`
}

type serverProps struct {
	port  uint16
	props *schema.Props
}

///////////////////////////////////////////////////////////////////////////////
// COMMANDS

func (cmd *HealthCommand) Run(ctx *Globals) (err error) {
	port := ctx.config.Port

	// OTEL
	parent, endSpan := otel.StartSpan(ctx.tracer, ctx.ctx, "HealthCommand",
		attribute.Int("port", int(port)),
	)
	defer func() { endSpan(err) }()

	// The manager reports the warning
	if !ctx.manager.CheckHealth(parent, port) {
		return llamachat.ErrConnection.Withf("port %d", port)
	}

	fmt.Println("ready on port", port)
	return nil
}

func (cmd *PropsCommand) Run(ctx *Globals) (err error) {
	ports := slices.Clone(cmd.Ports)
	if len(ports) == 0 {
		ports = []uint16{ctx.config.Port}
	}
	slices.Sort(ports)
	ports = slices.Compact(ports)

	// OTEL
	parent, endSpan := otel.StartSpan(ctx.tracer, ctx.ctx, "PropsCommand",
		attribute.Int("ports", len(ports)),
	)
	defer func() { endSpan(err) }()

	// Query each server concurrently
	result := make([]serverProps, len(ports))
	g, gctx := errgroup.WithContext(parent)
	for i, port := range ports {
		g.Go(func() error {
			props, err := queryProps(gctx, port, ctx.clientOpts)
			if err != nil {
				return fmt.Errorf("port %d: %w", port, err)
			}
			result[i] = serverProps{port: port, props: props}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// Print the results
	for _, server := range result {
		fmt.Println(bold(os.Stdout, fmt.Sprintf("port %d", server.port)))
		if server.props.ModelPath != "" {
			fmt.Println("  model:", server.props.ModelPath)
		}
		if server.props.BuildInfo != "" {
			fmt.Println("  build:", server.props.BuildInfo)
		}
		if server.props.TotalSlots > 0 {
			fmt.Println("  slots:", server.props.TotalSlots)
		}
		fmt.Println("  vision:", server.props.Modalities.Vision)
		fmt.Println("  audio:", server.props.Modalities.Audio)
		fmt.Println("  attach:", dim(os.Stdout, strings.Join(schema.AllowedExtensions(server.props.Modalities), " ")))
	}

	return nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func queryProps(ctx context.Context, port uint16, opts []client.ClientOpt) (*schema.Props, error) {
	client, err := llamacpp.NewWithPort(port, opts...)
	if err != nil {
		return nil, err
	}
	if err := client.Health(ctx); err != nil {
		return nil, err
	}
	return client.Props(ctx)
}
