package voice

import (
	"context"
	"log/slog"
	"sync"
)

// State is the assistant's listening state
type State string

const (
	StateIdle      State = "idle"
	StateListening State = "listening"
)

// Recognizer captures one utterance per listening session
type Recognizer interface {
	// Listen blocks until an utterance is captured or the context ends
	Listen(ctx context.Context) (string, error)
}

// Speaker voices feedback to the user
type Speaker interface {
	Speak(text string)
}

// Assistant drives the one-shot voice loop: toggle on, capture a single
// utterance, interpret it, speak the result, return to idle. A capture
// error also returns to idle with no retry.
type Assistant struct {
	mu         sync.Mutex
	state      State
	recognizer Recognizer
	speaker    Speaker
	commands   chan Command
	cancel     context.CancelFunc
}

// NewAssistant creates an assistant. A nil recognizer disables the
// assistant: toggling becomes a no-op.
func NewAssistant(recognizer Recognizer, speaker Speaker) *Assistant {
	return &Assistant{
		state:      StateIdle,
		recognizer: recognizer,
		speaker:    speaker,
		commands:   make(chan Command, 1),
	}
}

// State returns the current listening state
func (a *Assistant) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Commands delivers interpreted commands from completed captures
func (a *Assistant) Commands() <-chan Command {
	return a.commands
}

// Toggle flips between idle and listening. Starting a capture speaks
// the activation prompt; toggling mid-capture cancels it.
func (a *Assistant) Toggle(ctx context.Context) State {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.recognizer == nil {
		slog.Warn("voice assistant disabled, no recognizer available")
		return a.state
	}

	if a.state == StateListening {
		if a.cancel != nil {
			a.cancel()
			a.cancel = nil
		}
		a.state = StateIdle
		a.speak("Voice mode deactivated.")
		return a.state
	}

	listenCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.state = StateListening
	a.speak("Voice mode activated. How can I help you?")

	go a.listen(listenCtx)

	return a.state
}

// listen captures a single utterance, then returns the assistant to idle
func (a *Assistant) listen(ctx context.Context) {
	utterance, err := a.recognizer.Listen(ctx)

	a.mu.Lock()
	a.state = StateIdle
	a.cancel = nil
	a.mu.Unlock()

	if err != nil {
		slog.Warn("voice capture failed", "error", err)
		return
	}

	cmd := Interpret(utterance)
	a.speak(cmd.Speech)

	select {
	case a.commands <- cmd:
	default:
		slog.Warn("voice command dropped, consumer not ready", "action", cmd.Action)
	}
}

func (a *Assistant) speak(text string) {
	if a.speaker != nil {
		a.speaker.Speak(text)
	}
}
