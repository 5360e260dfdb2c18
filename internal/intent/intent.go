// Package intent turns free-form chat messages into structured task-board intents.
package intent

import "strings"

type Action string

const (
	ActionList     Action = "list"
	ActionAdd      Action = "add"
	ActionComplete Action = "complete"
	ActionRemove   Action = "remove"
	ActionEdit     Action = "edit"
	ActionHelp     Action = "help"
	ActionUnknown  Action = "unknown"
)

// ParseAction maps a case-insensitive action name onto a known Action.
func ParseAction(value string) (Action, bool) {
	switch Action(strings.ToLower(strings.TrimSpace(value))) {
	case ActionList:
		return ActionList, true
	case ActionAdd:
		return ActionAdd, true
	case ActionComplete:
		return ActionComplete, true
	case ActionRemove:
		return ActionRemove, true
	case ActionEdit:
		return ActionEdit, true
	case ActionHelp:
		return ActionHelp, true
	case ActionUnknown:
		return ActionUnknown, true
	default:
		return "", false
	}
}

// Entities holds the pieces extracted from a message. Zero values mean "not extracted";
// TaskIndex is the 1-based ordinal exactly as the user stated it.
type Entities struct {
	TaskText  string `json:"taskText,omitempty"`
	TaskIndex int    `json:"taskIndex,omitempty"`
	BoardName string `json:"boardName,omitempty"`
	NewText   string `json:"newText,omitempty"`
}

type Intent struct {
	Action       Action   `json:"action"`
	Confidence   float64  `json:"confidence"`
	Entities     Entities `json:"entities"`
	OriginalText string   `json:"originalText,omitempty"`
}

func unknownIntent(cleanText string) Intent {
	return Intent{
		Action:       ActionUnknown,
		Confidence:   0.1,
		OriginalText: cleanText,
	}
}
