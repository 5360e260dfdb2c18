package intent

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var errUnparsable = errors.New("unparsable intent reply")

// DefaultSystemPrompt instructs the completion provider to classify a message into one of the
// supported actions and answer with a single JSON object.
const DefaultSystemPrompt = `You classify chat messages sent to a personal task board assistant.

Supported actions:
- list: the user wants to see their tasks.
- add: the user wants to create a task. Put the task text in entities.taskText. Put a board name in entities.boardName only when the user names one.
- complete: the user finished a task. Use entities.taskIndex for a number ("task 2") or entities.taskText for a description ("the report", "that").
- remove: the user wants to delete a task. Same entities as complete.
- edit: the user wants to rename a task. Requires entities.taskIndex and entities.newText.
- help: the user asks what the assistant can do.
Use "unknown" when none of the actions apply.

Reply with ONLY a JSON object of this shape:
{"action": "<list|add|complete|remove|edit|help|unknown>", "confidence": <0..1>, "entities": {"taskText": "", "taskIndex": 0, "boardName": "", "newText": ""}}
Omit entities that are not present.

Examples:
"what's on my plate today" -> {"action": "list", "confidence": 0.9, "entities": {}}
"remind me to send the invoice to Acme" -> {"action": "add", "confidence": 0.95, "entities": {"taskText": "send the invoice to Acme"}}
"put buy paint on the House board" -> {"action": "add", "confidence": 0.9, "entities": {"taskText": "buy paint", "boardName": "House"}}
"I finished number 3" -> {"action": "complete", "confidence": 0.9, "entities": {"taskIndex": 3}}
"drop the dentist one" -> {"action": "remove", "confidence": 0.8, "entities": {"taskText": "dentist"}}
"rename 2 to call Maria on friday" -> {"action": "edit", "confidence": 0.9, "entities": {"taskIndex": 2, "newText": "call Maria on friday"}}
"what can you do?" -> {"action": "help", "confidence": 0.95, "entities": {}}`

type aiReply struct {
	Action     string   `json:"action"`
	Confidence *float64 `json:"confidence"`
	Entities   struct {
		TaskText  string          `json:"taskText"`
		TaskIndex json.RawMessage `json:"taskIndex"`
		BoardName string          `json:"boardName"`
		NewText   string          `json:"newText"`
	} `json:"entities"`
}

// decodeAIReply turns a raw completion into an Intent. Anything that is not a JSON object naming
// a known action is errUnparsable.
func decodeAIReply(raw, cleanText string) (Intent, error) {
	payload := extractJSON(raw)
	if payload == "" {
		return Intent{}, errUnparsable
	}
	var reply aiReply
	if err := json.Unmarshal([]byte(payload), &reply); err != nil {
		return Intent{}, fmt.Errorf("%w: %v", errUnparsable, err)
	}
	action, ok := ParseAction(reply.Action)
	if !ok {
		return Intent{}, fmt.Errorf("%w: unknown action %q", errUnparsable, reply.Action)
	}
	index, err := decodeTaskIndex(reply.Entities.TaskIndex)
	if err != nil {
		return Intent{}, fmt.Errorf("%w: %v", errUnparsable, err)
	}

	confidence := 0.5
	if reply.Confidence != nil {
		confidence = clampConfidence(*reply.Confidence)
	}
	return Intent{
		Action:     action,
		Confidence: confidence,
		Entities: Entities{
			TaskText:  strings.TrimSpace(reply.Entities.TaskText),
			TaskIndex: index,
			BoardName: strings.TrimSpace(reply.Entities.BoardName),
			NewText:   strings.TrimSpace(reply.Entities.NewText),
		},
		OriginalText: cleanText,
	}, nil
}

// decodeTaskIndex accepts a JSON number, a numeric string or null. Non-positive values mean absent.
func decodeTaskIndex(raw json.RawMessage) (int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, nil
	}
	var number json.Number
	if raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, err
		}
		text = strings.TrimPrefix(strings.TrimSpace(text), "#")
		if text == "" {
			return 0, nil
		}
		number = json.Number(text)
	} else {
		number = json.Number(raw)
	}
	value, err := strconv.ParseFloat(number.String(), 64)
	if err != nil {
		return 0, fmt.Errorf("task index %q is not a number", number.String())
	}
	if value < 1 || value != math.Trunc(value) {
		return 0, nil
	}
	return int(value), nil
}

func clampConfidence(value float64) float64 {
	switch {
	case math.IsNaN(value) || value < 0:
		return 0
	case value > 1:
		return 1
	default:
		return value
	}
}

// extractJSON returns the first balanced {...} object in the reply, skipping markdown fences or
// surrounding prose. Braces inside JSON strings are ignored.
func extractJSON(response string) string {
	start := strings.Index(response, "{")
	if start == -1 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(response); i++ {
		ch := response[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return response[start : i+1]
			}
		}
	}
	return ""
}
