package voice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterpretNavigation(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Command
	}{
		{
			name:  "go home",
			input: "please go home now",
			want:  Command{Action: ActionNavigate, Route: "/", Speech: "Navigating to home page"},
		},
		{
			name:  "dashboard",
			input: "show my dashboard",
			want:  Command{Action: ActionNavigate, Route: "/", Speech: "Navigating to home page"},
		},
		{
			name:  "student portal",
			input: "open the student portal",
			want:  Command{Action: ActionNavigate, Route: "/student", Speech: "Opening student portal"},
		},
		{
			name:  "daily work",
			input: "take me to daily work",
			want:  Command{Action: ActionNavigate, Route: "/daily/work", Speech: "Opening daily work sector"},
		},
		{
			name:  "disability",
			input: "disability portal please",
			want:  Command{Action: ActionNavigate, Route: "/disability/jobs", Speech: "Opening disability jobs portal"},
		},
		{
			name:  "jobs alone routes to disability jobs",
			input: "show me jobs",
			want:  Command{Action: ActionNavigate, Route: "/disability/jobs", Speech: "Opening disability jobs portal"},
		},
		{
			name:  "case insensitive",
			input: "GO HOME",
			want:  Command{Action: ActionNavigate, Route: "/", Speech: "Navigating to home page"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Interpret(tt.input))
		})
	}
}

func TestInterpretPriority(t *testing.T) {
	// "dashboard" outranks "student" when both appear
	cmd := Interpret("student dashboard")
	assert.Equal(t, ActionNavigate, cmd.Action)
	assert.Equal(t, "/", cmd.Route)

	// "student" outranks "jobs"
	cmd = Interpret("student jobs")
	assert.Equal(t, "/student", cmd.Route)
}

func TestInterpretLogout(t *testing.T) {
	for _, input := range []string{"logout", "please sign out", "LOGOUT now"} {
		cmd := Interpret(input)
		assert.Equal(t, ActionLogout, cmd.Action, "input %q", input)
		assert.Equal(t, "Logging you out. Goodbye.", cmd.Speech)
	}
}

func TestInterpretHelp(t *testing.T) {
	cmd := Interpret("help")
	assert.Equal(t, ActionHelp, cmd.Action)
	assert.Contains(t, cmd.Speech, "go home")
}

func TestInterpretUnknown(t *testing.T) {
	cmd := Interpret("Make Me A Sandwich")
	assert.Equal(t, ActionUnknown, cmd.Action)
	assert.Empty(t, cmd.Route)
	// The echo lowercases the utterance
	assert.Equal(t, "I heard make me a sandwich, but I don't recognize that command. Say help for options.", cmd.Speech)
}
