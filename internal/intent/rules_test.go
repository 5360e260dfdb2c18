package intent

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseRules(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Intent
	}{
		{
			name: "list",
			text: "list my tasks",
			want: Intent{Action: ActionList, Confidence: 0.8},
		},
		{
			name: "list via what's",
			text: "What's on my board",
			want: Intent{Action: ActionList, Confidence: 0.8},
		},
		{
			name: "add with colon",
			text: "add: buy milk ",
			want: Intent{Action: ActionAdd, Confidence: 0.85, Entities: Entities{TaskText: "buy milk"}},
		},
		{
			name: "add keeps casing",
			text: "Add call John about pricing",
			want: Intent{Action: ActionAdd, Confidence: 0.85, Entities: Entities{TaskText: "call John about pricing"}},
		},
		{
			name: "new task",
			text: "new task water the plants",
			want: Intent{Action: ActionAdd, Confidence: 0.85, Entities: Entities{TaskText: "water the plants"}},
		},
		{
			name: "complete by number",
			text: "complete task 1",
			want: Intent{Action: ActionComplete, Confidence: 0.9, Entities: Entities{TaskIndex: 1}},
		},
		{
			name: "done with hash",
			text: "done #12",
			want: Intent{Action: ActionComplete, Confidence: 0.9, Entities: Entities{TaskIndex: 12}},
		},
		{
			name: "complete by text",
			text: "mark the pricing deck as done",
			want: Intent{Action: ActionComplete, Confidence: 0.7, Entities: Entities{TaskText: "the pricing deck"}},
		},
		{
			name: "number wins over text",
			text: "complete 2 done",
			want: Intent{Action: ActionComplete, Confidence: 0.9, Entities: Entities{TaskIndex: 2}},
		},
		{
			name: "remove by number",
			text: "delete task 3",
			want: Intent{Action: ActionRemove, Confidence: 0.9, Entities: Entities{TaskIndex: 3}},
		},
		{
			name: "remove by reference",
			text: "delete that",
			want: Intent{Action: ActionRemove, Confidence: 0.7, Entities: Entities{TaskText: "that"}},
		},
		{
			name: "edit whose new text says delete",
			text: "change task 2 to delete it",
			want: Intent{Action: ActionEdit, Confidence: 0.85, Entities: Entities{TaskIndex: 2, NewText: "delete it"}},
		},
		{
			name: "edit whose new text says remove",
			text: "update task 1 to remove the old banner",
			want: Intent{Action: ActionEdit, Confidence: 0.85, Entities: Entities{TaskIndex: 1, NewText: "remove the old banner"}},
		},
		{
			name: "delete mid sentence is not a remove",
			text: "please do not delete anything",
			want: Intent{Action: ActionUnknown, Confidence: 0.1},
		},
		{
			name: "edit",
			text: "change task 2 to call Maria",
			want: Intent{Action: ActionEdit, Confidence: 0.85, Entities: Entities{TaskIndex: 2, NewText: "call Maria"}},
		},
		{
			name: "edit without to",
			text: "edit 4 renew passport",
			want: Intent{Action: ActionEdit, Confidence: 0.85, Entities: Entities{TaskIndex: 4, NewText: "renew passport"}},
		},
		{
			name: "edit without number falls through",
			text: "update the passport thing",
			want: Intent{Action: ActionUnknown, Confidence: 0.1},
		},
		{
			name: "help",
			text: "help",
			want: Intent{Action: ActionHelp, Confidence: 0.9},
		},
		{
			name: "what can",
			text: "what can you do",
			want: Intent{Action: ActionHelp, Confidence: 0.9},
		},
		{
			name: "gibberish",
			text: "asdkjasd",
			want: Intent{Action: ActionUnknown, Confidence: 0.1},
		},
		{
			name: "bare add does not match add",
			text: "add",
			want: Intent{Action: ActionUnknown, Confidence: 0.1},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.want.OriginalText = tc.text
			got := ParseRules(tc.text)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("ParseRules(%q) mismatch (-want +got):\n%s", tc.text, diff)
			}
		})
	}
}

func TestParseRulesFirstMatchWins(t *testing.T) {
	// Matches both the list rule and the add rule; list is checked first.
	got := ParseRules("add show tickets")
	if got.Action != ActionList {
		t.Fatalf("expected list to win, got %s", got.Action)
	}
	// Matches both remove-by-number and help ("how").
	got = ParseRules("delete task 2 somehow")
	if got.Action != ActionRemove || got.Entities.TaskIndex != 2 {
		t.Fatalf("expected remove #2 to win, got %+v", got)
	}
}

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"<@U123> add buy milk":            "add buy milk",
		"  list my tasks \n":              "list my tasks",
		"<#C42|general> <@!99> help me":   "help me",
		"add buy  2  bags of flour <@U9>": "add buy  2  bags of flour",
		"no references":                   "no references",
		"<@U1>":                           "",
	}
	for input, want := range tests {
		if got := Normalize(input); got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestParseAction(t *testing.T) {
	if action, ok := ParseAction(" Complete "); !ok || action != ActionComplete {
		t.Fatalf("expected complete, got %q %v", action, ok)
	}
	if _, ok := ParseAction("archive"); ok {
		t.Fatal("expected archive to be rejected")
	}
}
