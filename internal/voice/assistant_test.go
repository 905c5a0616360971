package voice

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecognizer struct {
	utterance string
	err       error
	release   chan struct{}
}

func (r *fakeRecognizer) Listen(ctx context.Context) (string, error) {
	if r.release != nil {
		select {
		case <-r.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return r.utterance, r.err
}

type fakeSpeaker struct {
	mu     sync.Mutex
	spoken []string
}

func (s *fakeSpeaker) Speak(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spoken = append(s.spoken, text)
}

func (s *fakeSpeaker) lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.spoken...)
}

func TestAssistantOneShot(t *testing.T) {
	rec := &fakeRecognizer{utterance: "go home"}
	spk := &fakeSpeaker{}
	a := NewAssistant(rec, spk)

	assert.Equal(t, StateIdle, a.State())

	state := a.Toggle(context.Background())
	assert.Equal(t, StateListening, state)

	select {
	case cmd := <-a.Commands():
		assert.Equal(t, ActionNavigate, cmd.Action)
		assert.Equal(t, "/", cmd.Route)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for command")
	}

	// One-shot: back to idle after a single capture
	require.Eventually(t, func() bool {
		return a.State() == StateIdle
	}, time.Second, 10*time.Millisecond)

	lines := spk.lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "Voice mode activated. How can I help you?", lines[0])
	assert.Equal(t, "Navigating to home page", lines[1])
}

func TestAssistantToggleOff(t *testing.T) {
	rec := &fakeRecognizer{utterance: "go home", release: make(chan struct{})}
	spk := &fakeSpeaker{}
	a := NewAssistant(rec, spk)

	assert.Equal(t, StateListening, a.Toggle(context.Background()))

	// Toggling again cancels the in-flight capture
	assert.Equal(t, StateIdle, a.Toggle(context.Background()))

	require.Eventually(t, func() bool {
		return a.State() == StateIdle
	}, time.Second, 10*time.Millisecond)

	// No command delivered for a cancelled capture
	select {
	case cmd := <-a.Commands():
		t.Fatalf("unexpected command: %+v", cmd)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestAssistantCaptureError(t *testing.T) {
	rec := &fakeRecognizer{err: errors.New("microphone unavailable")}
	spk := &fakeSpeaker{}
	a := NewAssistant(rec, spk)

	a.Toggle(context.Background())

	// Error drops back to idle without retrying or speaking a result
	require.Eventually(t, func() bool {
		return a.State() == StateIdle
	}, time.Second, 10*time.Millisecond)

	select {
	case cmd := <-a.Commands():
		t.Fatalf("unexpected command: %+v", cmd)
	case <-time.After(50 * time.Millisecond):
	}

	lines := spk.lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "Voice mode activated. How can I help you?", lines[0])
}

func TestAssistantDisabled(t *testing.T) {
	a := NewAssistant(nil, &fakeSpeaker{})

	// No recognizer: toggling is a no-op
	assert.Equal(t, StateIdle, a.Toggle(context.Background()))
	assert.Equal(t, StateIdle, a.State())
}
