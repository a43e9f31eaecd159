package greeting

import (
	"context"
	"time"

	"facegreeter/internal/logger"
	"facegreeter/internal/model"
)

// Greeting is the outcome of the greeting pipeline for one identity.
type Greeting struct {
	Name     string
	Known    bool
	Text     string
	Audio    []byte
	Degraded bool
}

// Greeter runs prompt -> chat -> speech for an identity and falls back to canned text on failure.
type Greeter struct {
	chat    ChatProvider
	tts     Synthesizer
	prompts *Prompts
	timeout time.Duration
	logger  *logger.Logger
}

// NewGreeter accepts a nil chat provider (always fallback text) and a nil synthesizer (no audio).
func NewGreeter(chat ChatProvider, tts Synthesizer, prompts *Prompts, timeout time.Duration, logger *logger.Logger) *Greeter {
	return &Greeter{chat: chat, tts: tts, prompts: prompts, timeout: timeout, logger: logger}
}

func (g *Greeter) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.timeout)
}

// Text returns the chat reply for name, or the fallback text with degraded=true.
func (g *Greeter) Text(ctx context.Context, name string) (string, bool) {
	if g.chat == nil {
		return g.prompts.Fallback(name), true
	}

	callCtx, cancel := g.withTimeout(ctx)
	defer cancel()

	reply, err := g.chat.Complete(callCtx, g.prompts.Prompt(name))
	if err != nil {
		g.logger.Warning("Chat provider %s failed for %s: %v", g.chat.Name(), name, err)
		return g.prompts.Fallback(name), true
	}
	return reply, false
}

// Greet produces the greeting text and, when a synthesizer is configured, its audio.
// A failure of either call yields the fallback text without audio.
func (g *Greeter) Greet(ctx context.Context, name string) Greeting {
	greeting := Greeting{Name: name, Known: name != model.UnknownIdentity}

	text, degraded := g.Text(ctx, name)
	if degraded {
		greeting.Text = text
		greeting.Degraded = true
		return greeting
	}

	if g.tts == nil {
		greeting.Text = text
		return greeting
	}

	callCtx, cancel := g.withTimeout(ctx)
	defer cancel()

	audio, err := g.tts.Synthesize(callCtx, text)
	if err != nil {
		g.logger.Warning("Speech synthesis failed for %s: %v", name, err)
		greeting.Text = g.prompts.Fallback(name)
		greeting.Degraded = true
		return greeting
	}

	greeting.Text = text
	greeting.Audio = audio
	return greeting
}
