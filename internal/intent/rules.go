package intent

import (
	"regexp"
	"strconv"
	"strings"
)

// rule is one ordered check of the deterministic parser. match returns false to let the
// next rule try.
type rule struct {
	name  string
	match func(cleanText string) (Intent, bool)
}

var (
	listPattern          = regexp.MustCompile(`(?i)(list|show|what's|what’s|display|my tasks|my todos)`)
	addPattern           = regexp.MustCompile(`(?i)\b(?:add|create|remind|new task)\b[:\s]+([^:\s].*)$`)
	completeIndexPattern = regexp.MustCompile(`(?i)\b(?:complete|done|finished?)\s+(?:task\s+)?#?(\d+)\b`)
	completeTextPattern  = regexp.MustCompile(`(?i)\b(?:mark|complete|finish)\s+(.+?)\s+(?:as\s+)?(?:done|complete)\b`)
	removeIndexPattern   = regexp.MustCompile(`(?i)\b(?:remove|delete)\s+(?:task\s+)?#?(\d+)\b`)
	removeTextPattern    = regexp.MustCompile(`(?i)^(?:remove|delete)\s+(?:task\s+)?(.+)$`)
	editPattern          = regexp.MustCompile(`(?i)\b(?:change|edit|update)\s+(?:task\s+)?#?(\d+)\s+(?:to\s+)?(.+)$`)
	helpPattern          = regexp.MustCompile(`(?i)(help|how|what can)`)
)

var rules = []rule{
	{name: "list", match: matchList},
	{name: "add", match: matchAdd},
	{name: "complete-index", match: matchCompleteIndex},
	{name: "complete-text", match: matchCompleteText},
	{name: "remove-index", match: matchRemoveIndex},
	{name: "edit", match: matchEdit},
	// Anchored and after edit so new text mentioning "delete" never deletes a task.
	{name: "remove-text", match: matchRemoveText},
	{name: "help", match: matchHelp},
}

// ParseRules runs the deterministic parser over already normalized text. The first
// matching rule wins; no match yields ActionUnknown with confidence 0.1.
func ParseRules(cleanText string) Intent {
	for _, r := range rules {
		if parsed, ok := r.match(cleanText); ok {
			parsed.OriginalText = cleanText
			return parsed
		}
	}
	return unknownIntent(cleanText)
}

func matchList(text string) (Intent, bool) {
	if !listPattern.MatchString(text) {
		return Intent{}, false
	}
	return Intent{Action: ActionList, Confidence: 0.8}, true
}

func matchAdd(text string) (Intent, bool) {
	groups := addPattern.FindStringSubmatch(text)
	if groups == nil {
		return Intent{}, false
	}
	taskText := strings.TrimSpace(groups[1])
	if taskText == "" {
		return Intent{}, false
	}
	return Intent{Action: ActionAdd, Confidence: 0.85, Entities: Entities{TaskText: taskText}}, true
}

func matchCompleteIndex(text string) (Intent, bool) {
	index, ok := submatchIndex(completeIndexPattern, text)
	if !ok {
		return Intent{}, false
	}
	return Intent{Action: ActionComplete, Confidence: 0.9, Entities: Entities{TaskIndex: index}}, true
}

func matchCompleteText(text string) (Intent, bool) {
	groups := completeTextPattern.FindStringSubmatch(text)
	if groups == nil {
		return Intent{}, false
	}
	taskText := strings.TrimSpace(groups[1])
	if taskText == "" {
		return Intent{}, false
	}
	return Intent{Action: ActionComplete, Confidence: 0.7, Entities: Entities{TaskText: taskText}}, true
}

func matchRemoveIndex(text string) (Intent, bool) {
	index, ok := submatchIndex(removeIndexPattern, text)
	if !ok {
		return Intent{}, false
	}
	return Intent{Action: ActionRemove, Confidence: 0.9, Entities: Entities{TaskIndex: index}}, true
}

func matchRemoveText(text string) (Intent, bool) {
	groups := removeTextPattern.FindStringSubmatch(text)
	if groups == nil {
		return Intent{}, false
	}
	taskText := strings.TrimSpace(groups[1])
	if taskText == "" {
		return Intent{}, false
	}
	return Intent{Action: ActionRemove, Confidence: 0.7, Entities: Entities{TaskText: taskText}}, true
}

func matchEdit(text string) (Intent, bool) {
	groups := editPattern.FindStringSubmatch(text)
	if groups == nil {
		return Intent{}, false
	}
	index, err := strconv.Atoi(groups[1])
	if err != nil {
		return Intent{}, false
	}
	newText := strings.TrimSpace(groups[2])
	if newText == "" {
		return Intent{}, false
	}
	return Intent{
		Action:     ActionEdit,
		Confidence: 0.85,
		Entities:   Entities{TaskIndex: index, NewText: newText},
	}, true
}

func matchHelp(text string) (Intent, bool) {
	if !helpPattern.MatchString(text) {
		return Intent{}, false
	}
	return Intent{Action: ActionHelp, Confidence: 0.9}, true
}

func submatchIndex(pattern *regexp.Regexp, text string) (int, bool) {
	groups := pattern.FindStringSubmatch(text)
	if groups == nil {
		return 0, false
	}
	index, err := strconv.Atoi(groups[1])
	if err != nil {
		return 0, false
	}
	return index, true
}
