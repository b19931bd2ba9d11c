package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	// Packages
	otel "github.com/mutablelogic/go-client/pkg/otel"
	llamachat "github.com/mutablelogic/go-llamachat"
	attribute "go.opentelemetry.io/otel/attribute"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type WriteCommand struct {
	Prompt    string `arg:"" optional:"" help:"Text to continue (read from stdin when omitted)"`
	MaxTokens int    `name:"max-tokens" short:"n" help:"Maximum number of tokens to generate, or -1 for no limit (overrides the configuration file)"`
	NoStream  bool   `name:"no-stream" help:"Wait for the whole continuation rather than streaming it"`
}

///////////////////////////////////////////////////////////////////////////////
// COMMANDS

func (cmd *WriteCommand) Run(ctx *Globals) (err error) {
	prompt := cmd.Prompt
	if prompt == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return err
		}
		prompt = string(data)
	}
	if strings.TrimSpace(prompt) == "" {
		return llamachat.ErrEmptyMessage.With("nothing to continue")
	}

	// Sampler settings
	config := ctx.config.Sampler
	if cmd.MaxTokens != 0 {
		config.MaxTokens = cmd.MaxTokens
	}
	if cmd.NoStream {
		config.Stream = false
	}

	// OTEL
	parent, endSpan := otel.StartSpan(ctx.tracer, ctx.ctx, "WriteCommand",
		attribute.Int("port", int(ctx.config.Port)),
	)
	defer func() { endSpan(err) }()

	// Print the document as it grows
	interrupt, stop := notifyInterrupt()
	defer stop()

	var printed string
	err = ctx.interruptible(interrupt, func() error {
		return ctx.manager.Write(parent, ctx.config.Port, config, prompt, func(text string) {
			if strings.HasPrefix(text, printed) {
				fmt.Print(text[len(printed):])
			} else {
				fmt.Print("\n" + text)
			}
			printed = text
		})
	})
	if printed != "" && !strings.HasSuffix(printed, "\n") {
		fmt.Println()
	}
	return err
}
