package voice

import (
	"fmt"
	"strings"
)

// Action identifies what a spoken command asks the client to do
type Action string

const (
	ActionNavigate Action = "navigate"
	ActionLogout   Action = "logout"
	ActionHelp     Action = "help"
	ActionUnknown  Action = "unknown"
)

// Command is the interpreted result of one utterance
type Command struct {
	Action Action `json:"action"`
	Route  string `json:"route,omitempty"`
	Speech string `json:"speech"`
}

// rule matches an utterance when it contains any of its phrases.
// Rules are ordered: the first match wins, so broad phrases like
// "jobs" must come after more specific ones like "daily work".
type rule struct {
	phrases []string
	command Command
}

var rules = []rule{
	{
		phrases: []string{"go home", "dashboard"},
		command: Command{Action: ActionNavigate, Route: "/", Speech: "Navigating to home page"},
	},
	{
		phrases: []string{"student"},
		command: Command{Action: ActionNavigate, Route: "/student", Speech: "Opening student portal"},
	},
	{
		phrases: []string{"daily work"},
		command: Command{Action: ActionNavigate, Route: "/daily/work", Speech: "Opening daily work sector"},
	},
	{
		phrases: []string{"disability", "jobs"},
		command: Command{Action: ActionNavigate, Route: "/disability/jobs", Speech: "Opening disability jobs portal"},
	},
	{
		phrases: []string{"logout", "sign out"},
		command: Command{Action: ActionLogout, Route: "/", Speech: "Logging you out. Goodbye."},
	},
	{
		phrases: []string{"help"},
		command: Command{Action: ActionHelp, Speech: "You can say commands like: go home, student portal, daily work, disability jobs, or logout."},
	},
}

// Interpret maps an utterance to a command. Matching is case
// insensitive substring containment against the rule table.
func Interpret(utterance string) Command {
	cmd := strings.ToLower(utterance)

	for _, r := range rules {
		for _, phrase := range r.phrases {
			if strings.Contains(cmd, phrase) {
				return r.command
			}
		}
	}

	return Command{
		Action: ActionUnknown,
		Speech: fmt.Sprintf("I heard %s, but I don't recognize that command. Say help for options.", cmd),
	}
}
