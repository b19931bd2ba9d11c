package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	// Packages
	otel "github.com/mutablelogic/go-client/pkg/otel"
	llamachat "github.com/mutablelogic/go-llamachat"
	sampler "github.com/mutablelogic/go-llamachat/pkg/sampler"
	schema "github.com/mutablelogic/go-llamachat/pkg/schema"
	attribute "go.opentelemetry.io/otel/attribute"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type ChatCommand struct {
	System     string `name:"system" help:"System prompt (overrides the configuration file)"`
	NoStream   bool   `name:"no-stream" help:"Wait for the whole reply rather than streaming it"`
	Markdown   bool   `name:"markdown" help:"Render replies as markdown"`
	Transcript string `name:"transcript" type:"path" help:"Load the conversation from a file, and save it on exit"`
}

type repl struct {
	*Globals
	ctx          context.Context
	interrupt    <-chan os.Signal
	params       sampler.Config
	systemPrompt string
	markdown     bool
	allowed      []string
	pending      []string
}

// reply prints an assistant reply as it is generated
type reply struct {
	markdown bool
	started  bool
	text     string
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	promptLabel = "> "
	helpText    = `Commands:
  /attach PATH   attach a file to the next message
  /system TEXT   set the system prompt, or clear it when empty
  /retry         generate the last reply again
  /undo          remove the last exchange
  /clear         remove all messages
  /model         refresh the model information
  /save PATH     save the conversation
  /load PATH     load a conversation
  /quit          exit
Press Ctrl+C to stop a reply, or to exit when idle.`
)

///////////////////////////////////////////////////////////////////////////////
// COMMANDS

func (cmd *ChatCommand) Run(ctx *Globals) (err error) {
	r := &repl{
		Globals:      ctx,
		params:       ctx.config.Sampler,
		systemPrompt: ctx.config.SystemPrompt,
		markdown:     cmd.Markdown,
	}
	if cmd.System != "" {
		r.systemPrompt = cmd.System
	}
	if cmd.NoStream {
		r.params.Stream = false
	}

	// OTEL
	parent, endSpan := otel.StartSpan(ctx.tracer, ctx.ctx, "ChatCommand",
		attribute.Int("port", int(ctx.config.Port)),
	)
	defer func() { endSpan(err) }()
	r.ctx = parent

	// Restore the transcript
	if cmd.Transcript != "" {
		if err := ctx.manager.Session().ReadFile(cmd.Transcript); err != nil && !errors.Is(err, llamachat.ErrNotFound) {
			return err
		}
	}

	// Read the model modalities; a warning is printed when the server is down
	_, r.allowed, _ = ctx.manager.RefreshModelInfo(parent, ctx.config.Port)

	// Print the conversation so far, or some suggestions
	if conversation := *ctx.manager.Session().Conversation(); len(conversation) > 0 {
		r.print(conversation)
	} else {
		fmt.Println(dim(os.Stdout, "Try one of these, or type /help:"))
		for _, prompt := range schema.ExamplePrompts {
			fmt.Println(dim(os.Stdout, "  "+prompt))
		}
	}

	// Run the loop, and save the transcript on exit
	err = r.run()
	if cmd.Transcript != "" {
		err = errors.Join(err, ctx.manager.Session().WriteFile(cmd.Transcript))
	}
	return err
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// run reads lines from stdin until end of input, an interrupt while idle,
// or termination
func (r *repl) run() error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	interrupt, stop := notifyInterrupt()
	defer stop()
	r.interrupt = interrupt

	for {
		fmt.Print(bold(os.Stdout, promptLabel))
		select {
		case <-r.ctx.Done():
			fmt.Println()
			return nil
		case <-interrupt:
			fmt.Println()
			return nil
		case line, ok := <-lines:
			if !ok {
				fmt.Println()
				return nil
			}
			if quit := r.handle(strings.TrimSpace(line)); quit {
				return nil
			}
		}
	}
}

// handle processes a line of input, and returns true when the user quits
func (r *repl) handle(line string) bool {
	if !strings.HasPrefix(line, "/") {
		r.submit(line)
		return false
	}

	command, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch command {
	case "/quit", "/exit":
		return true
	case "/help":
		fmt.Println(helpText)
	case "/attach":
		r.attach(arg)
	case "/system":
		r.systemPrompt = arg
	case "/retry":
		if _, err := r.manager.RetryLastReply(); err != nil {
			r.error(err)
		} else {
			r.generate()
		}
	case "/undo":
		if text, _, err := r.manager.Undo(); err != nil {
			r.error(err)
		} else if text != "" {
			fmt.Println(dim(os.Stdout, "removed: "+text))
		}
	case "/clear":
		if err := r.manager.Clear(); err != nil {
			r.error(err)
		}
		r.pending = nil
	case "/model":
		var modalities schema.Modalities
		modalities, r.allowed, _ = r.manager.RefreshModelInfo(r.ctx, r.config.Port)
		fmt.Println(dim(os.Stdout, fmt.Sprintf("vision=%v audio=%v", modalities.Vision, modalities.Audio)))
	case "/save":
		if err := r.manager.Session().WriteFile(arg); err != nil {
			r.error(err)
		}
	case "/load":
		if err := r.manager.Session().ReadFile(arg); err != nil {
			r.error(err)
		} else {
			r.print(*r.manager.Session().Conversation())
		}
	default:
		r.error(llamachat.ErrBadParameter.Withf("unknown command %q, type /help", command))
	}
	return false
}

// submit appends the user message and any pending attachments, then
// generates the reply
func (r *repl) submit(text string) {
	if _, err := r.manager.SubmitUserMessage(text, r.pending, r.systemPrompt); err != nil {
		r.error(err)
		return
	}
	r.pending = nil
	r.generate()
}

// attach queues a file for the next message
func (r *repl) attach(path string) {
	ext := filepath.Ext(path)
	switch {
	case path == "":
		r.error(llamachat.ErrBadParameter.With("missing path"))
	case !slices.Contains(r.allowed, ext) && !slices.Contains(r.allowed, strings.ToLower(ext)):
		r.error(llamachat.ErrBadParameter.Withf("%q cannot be attached for this model", filepath.Base(path)))
	case len(r.pending) >= schema.MaxAttachments:
		r.error(llamachat.ErrTooManyAttachments.Withf("at most %d files", schema.MaxAttachments))
	default:
		if _, err := os.Stat(path); err != nil {
			r.error(err)
			return
		}
		r.pending = append(r.pending, path)
		fmt.Println(dim(os.Stdout, fmt.Sprintf("attached %s (%s)", filepath.Base(path), schema.KindOf(path))))
	}
}

// generate runs the chat request, printing the reply as it arrives
func (r *repl) generate() {
	out := &reply{markdown: r.markdown}
	err := r.interruptible(r.interrupt, func() error {
		return r.manager.Chat(r.ctx, r.config.Port, r.params, out.update)
	})
	out.finish()
	if err != nil {
		// The notifier has already printed a warning
		r.logger.Debug(r.ctx, err)
	}
}

// print writes out a conversation
func (r *repl) print(conversation schema.Conversation) {
	for _, message := range conversation {
		switch {
		case message.Role == schema.RoleSystem:
			continue
		case message.Attachment != nil:
			fmt.Println(dim(os.Stdout, "attached "+message.Attachment.Name))
		case message.Role == schema.RoleAssistant && r.markdown:
			fmt.Print(bold(os.Stdout, message.Role+": ") + renderMarkdown(os.Stdout, message.Content()))
		default:
			fmt.Println(bold(os.Stdout, message.Role+": ") + message.Content())
		}
	}
}

func (r *repl) error(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
}

// update receives conversation snapshots during generation
func (out *reply) update(conversation schema.Conversation) {
	last := conversation.Last()
	if last == nil || last.Role != schema.RoleAssistant {
		out.text = ""
		return
	}
	text := last.Content()
	if out.markdown {
		out.text = text
		return
	}
	if !out.started {
		fmt.Print(bold(os.Stdout, schema.RoleAssistant+": "))
		out.started = true
	}
	if strings.HasPrefix(text, out.text) {
		fmt.Print(text[len(out.text):])
	}
	out.text = text
}

// finish ends the reply once generation has completed
func (out *reply) finish() {
	switch {
	case out.markdown && out.text != "":
		fmt.Print(bold(os.Stdout, schema.RoleAssistant+": ") + renderMarkdown(os.Stdout, out.text))
	case out.started:
		fmt.Println()
	}
}
