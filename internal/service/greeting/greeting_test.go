package greeting

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"facegreeter/internal/logger"
	"facegreeter/internal/model"
)

type fakeChat struct {
	reply   string
	err     error
	block   bool
	prompts []string
}

func (c *fakeChat) Name() string { return "fake" }

func (c *fakeChat) Complete(ctx context.Context, prompt string) (string, error) {
	c.prompts = append(c.prompts, prompt)
	if c.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return c.reply, c.err
}

type fakeTTS struct {
	err error
}

func (t *fakeTTS) Synthesize(_ context.Context, text string) ([]byte, error) {
	if t.err != nil {
		return nil, t.err
	}
	return []byte("mp3:" + text), nil
}

func (t *fakeTTS) Close() error { return nil }

type recordingPublisher struct {
	events []model.GreetingEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event model.GreetingEvent) error {
	p.events = append(p.events, event)
	return p.err
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()

	l, err := logger.New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func newTestGreeter(t *testing.T, chat ChatProvider, tts Synthesizer) *Greeter {
	t.Helper()

	prompts, err := LoadPrompts()
	if err != nil {
		t.Fatalf("LoadPrompts failed: %v", err)
	}
	return NewGreeter(chat, tts, prompts, 50*time.Millisecond, newTestLogger(t))
}

func detections(names ...string) []model.Detection {
	out := make([]model.Detection, len(names))
	for i, name := range names {
		out[i] = model.NewDetection(image.Rect(0, 0, 10, 10), name)
	}
	return out
}

// ========================================
// Prompts
// ========================================

func TestPrompts(t *testing.T) {
	p, err := LoadPrompts()
	if err != nil {
		t.Fatalf("LoadPrompts failed: %v", err)
	}

	tests := []struct {
		name     string
		prompt   string
		fallback string
	}{
		{"alice", "Greet alice warmly as a returning customer.", "Welcome back, alice"},
		{model.UnknownIdentity, "Greet an unknown visitor politely and offer assistance.", "Welcome!"},
	}

	for _, tt := range tests {
		if got := p.Prompt(tt.name); got != tt.prompt {
			t.Errorf("Prompt(%s) = %q, expected %q", tt.name, got, tt.prompt)
		}
		if got := p.Fallback(tt.name); got != tt.fallback {
			t.Errorf("Fallback(%s) = %q, expected %q", tt.name, got, tt.fallback)
		}
	}
}

// ========================================
// Greeter
// ========================================

func TestGreeter_Greet(t *testing.T) {
	chat := &fakeChat{reply: "Hi alice, great to see you!"}
	g := newTestGreeter(t, chat, &fakeTTS{})

	got := g.Greet(context.Background(), "alice")

	if got.Degraded {
		t.Error("Expected non-degraded greeting")
	}
	if got.Text != "Hi alice, great to see you!" {
		t.Errorf("Unexpected text %q", got.Text)
	}
	if string(got.Audio) != "mp3:Hi alice, great to see you!" {
		t.Errorf("Unexpected audio %q", got.Audio)
	}
	if len(chat.prompts) != 1 || chat.prompts[0] != "Greet alice warmly as a returning customer." {
		t.Errorf("Unexpected prompts %v", chat.prompts)
	}
}

func TestGreeter_Fallbacks(t *testing.T) {
	tests := []struct {
		name     string
		chat     ChatProvider
		tts      Synthesizer
		identity string
		expected string
	}{
		{"chat error known", &fakeChat{err: errors.New("503")}, &fakeTTS{}, "bob", "Welcome back, bob"},
		{"chat error unknown", &fakeChat{err: errors.New("503")}, &fakeTTS{}, model.UnknownIdentity, "Welcome!"},
		{"tts error", &fakeChat{reply: "Hello"}, &fakeTTS{err: errors.New("quota")}, "bob", "Welcome back, bob"},
		{"chat timeout", &fakeChat{block: true}, &fakeTTS{}, "bob", "Welcome back, bob"},
		{"no chat provider", nil, &fakeTTS{}, "bob", "Welcome back, bob"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newTestGreeter(t, tt.chat, tt.tts).Greet(context.Background(), tt.identity)
			if !got.Degraded {
				t.Error("Expected degraded greeting")
			}
			if got.Text != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got.Text)
			}
			if got.Audio != nil {
				t.Error("Expected no audio on fallback")
			}
		})
	}
}

func TestGreeter_NoSynthesizer(t *testing.T) {
	got := newTestGreeter(t, &fakeChat{reply: "Hello"}, nil).Greet(context.Background(), "alice")
	if got.Degraded || got.Text != "Hello" || got.Audio != nil {
		t.Errorf("Unexpected greeting %+v", got)
	}
}

// ========================================
// Notifier
// ========================================

func TestNotifier_OnlyOnChangeOfSubject(t *testing.T) {
	pub := &recordingPublisher{}
	n := NewNotifier(newTestGreeter(t, &fakeChat{reply: "hi"}, nil), pub, ModeFirst, "session-1", newTestLogger(t))

	var total int
	for _, name := range []string{"A", "A", "B", "A"} {
		total += len(n.Notify(context.Background(), detections(name), nil))
	}

	if total != 3 {
		t.Fatalf("Expected 3 notifications, got %d", total)
	}

	expected := []string{"A", "B", "A"}
	for i, event := range pub.events {
		if event.Name != expected[i] {
			t.Errorf("Event %d: expected %s, got %s", i, expected[i], event.Name)
		}
		if event.SessionID != "session-1" || event.ID == "" {
			t.Errorf("Event %d missing ids: %+v", i, event)
		}
	}
	if n.State().LastNotifiedName != "A" || n.State().Notifications != 3 {
		t.Errorf("Unexpected state %+v", n.State())
	}
}

func TestNotifier_Modes(t *testing.T) {
	tests := []struct {
		mode     Mode
		frame    []string
		expected []string
	}{
		{ModeFirst, []string{"A", "B"}, []string{"A"}},
		{ModeEach, []string{"A", "B"}, []string{"A", "B"}},
		{ModeEach, []string{"A", "A", "B", "B"}, []string{"A", "B"}},
		{ModeEach, []string{"A", "B", "A"}, []string{"A", "B", "A"}},
		{ModeFirst, nil, nil},
	}

	for _, tt := range tests {
		n := NewNotifier(newTestGreeter(t, nil, nil), nil, tt.mode, "s", newTestLogger(t))
		events := n.Notify(context.Background(), detections(tt.frame...), nil)

		if len(events) != len(tt.expected) {
			t.Errorf("%s %v: expected %d events, got %d", tt.mode, tt.frame, len(tt.expected), len(events))
			continue
		}
		for i := range events {
			if events[i].Name != tt.expected[i] {
				t.Errorf("%s %v: event %d expected %s, got %s", tt.mode, tt.frame, i, tt.expected[i], events[i].Name)
			}
		}
	}
}

func TestNotifier_PublishErrorDoesNotStopGreeting(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	n := NewNotifier(newTestGreeter(t, nil, nil), pub, ModeFirst, "s", newTestLogger(t))

	events := n.Notify(context.Background(), detections(model.UnknownIdentity), []byte("jpeg"))
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	if events[0].Known || !events[0].Degraded || events[0].Text != "Welcome!" {
		t.Errorf("Unexpected event %+v", events[0])
	}
	if string(events[0].Snapshot) != "jpeg" {
		t.Error("Expected snapshot to be attached")
	}
	if n.State().LastNotifiedName != model.UnknownIdentity {
		t.Error("Expected state to advance despite publish error")
	}
}

func TestParseMode(t *testing.T) {
	if ParseMode("each") != ModeEach || ParseMode("first") != ModeFirst || ParseMode("") != ModeFirst {
		t.Error("Unexpected mode parsing")
	}
}
