package intent

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/dwizi/board-agent/internal/llm"
)

type fakeCompleter struct {
	mu      sync.Mutex
	reply   string
	err     error
	block   bool
	prompts []string
	inputs  []string
}

func (f *fakeCompleter) Complete(ctx context.Context, systemPrompt, userText string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, systemPrompt)
	f.inputs = append(f.inputs, userText)
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.reply, f.err
}

func TestParseFallsBackToRules(t *testing.T) {
	inputs := []string{
		"<@U1> add call John about pricing",
		"list my tasks",
		"complete task 1",
		"delete that",
		"asdkjasd",
		"add",
	}
	completers := map[string]*fakeCompleter{
		"error":       {err: errors.New("boom")},
		"unavailable": {err: llm.ErrUnavailable},
		"garbage":     {reply: "I think the user wants to add something"},
		"bad json":    {reply: `{"action": "add", "confidence": }`},
		"bad action":  {reply: `{"action": "archive", "confidence": 0.9}`},
		"bad index":   {reply: `{"action": "complete", "entities": {"taskIndex": "second"}}`},
		"empty":       {reply: ""},
		"timeout":     {block: true},
	}
	for name, completer := range completers {
		t.Run(name, func(t *testing.T) {
			parser := New(Config{Timeout: 20 * time.Millisecond}, completer, nil)
			for _, input := range inputs {
				got := parser.Parse(context.Background(), input)
				want := ParseRules(Normalize(input))
				if diff := cmp.Diff(want, got); diff != "" {
					t.Fatalf("Parse(%q) mismatch (-want +got):\n%s", input, diff)
				}
			}
		})
	}
}

func TestParseWithoutCompleterUsesRules(t *testing.T) {
	parser := New(Config{}, nil, nil)
	got := parser.Parse(context.Background(), "asdkjasd")
	want := Intent{Action: ActionUnknown, Confidence: 0.1, OriginalText: "asdkjasd"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected intent (-want +got):\n%s", diff)
	}
}

func TestParseUsesAIReply(t *testing.T) {
	completer := &fakeCompleter{
		reply: "<think>user wants a task</think>\n```json\n" +
			`{"action": "add", "confidence": 0.93, "entities": {"taskText": "buy paint {blue}", "boardName": "House"}}` +
			"\n```",
	}
	parser := New(Config{}, completer, nil)

	got := parser.Parse(context.Background(), "<@U7>  put buy paint on the House board")
	want := Intent{
		Action:       ActionAdd,
		Confidence:   0.93,
		Entities:     Entities{TaskText: "buy paint {blue}", BoardName: "House"},
		OriginalText: "put buy paint on the House board",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected intent (-want +got):\n%s", diff)
	}
	if len(completer.inputs) != 1 || completer.inputs[0] != "put buy paint on the House board" {
		t.Fatalf("expected cleaned text to be sent, got %#v", completer.inputs)
	}
	if completer.prompts[0] != DefaultSystemPrompt {
		t.Fatal("expected default system prompt")
	}
}

func TestParseAIReplyNormalizesFields(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  Intent
	}{
		{
			name:  "string index and clamped confidence",
			reply: `{"action": "COMPLETE", "confidence": 1.7, "entities": {"taskIndex": "#2"}}`,
			want:  Intent{Action: ActionComplete, Confidence: 1, Entities: Entities{TaskIndex: 2}},
		},
		{
			name:  "missing confidence",
			reply: `{"action": "list"}`,
			want:  Intent{Action: ActionList, Confidence: 0.5},
		},
		{
			name:  "null and zero index are absent",
			reply: `{"action": "remove", "confidence": -1, "entities": {"taskIndex": 0, "taskText": " dentist "}}`,
			want:  Intent{Action: ActionRemove, Confidence: 0, Entities: Entities{TaskText: "dentist"}},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			parser := New(Config{}, &fakeCompleter{reply: tc.reply}, nil)
			got := parser.Parse(context.Background(), "something")
			tc.want.OriginalText = "something"
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("unexpected intent (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSetSystemPrompt(t *testing.T) {
	completer := &fakeCompleter{reply: `{"action": "help", "confidence": 0.9}`}
	parser := New(Config{SystemPrompt: "custom"}, completer, nil)
	parser.Parse(context.Background(), "hi")
	parser.SetSystemPrompt("  ")
	parser.Parse(context.Background(), "hi")

	if completer.prompts[0] != "custom" {
		t.Fatalf("expected custom prompt, got %q", completer.prompts[0])
	}
	if completer.prompts[1] != DefaultSystemPrompt {
		t.Fatal("expected empty prompt to restore the default")
	}
}

func TestExtractJSON(t *testing.T) {
	tests := map[string]string{
		`noise {"a": {"b": 1}} tail {"c": 2}`: `{"a": {"b": 1}}`,
		`{"text": "brace } inside"}`:          `{"text": "brace } inside"}`,
		`{"text": "quote \" and }"}`:          `{"text": "quote \" and }"}`,
		`no object here`:                      ``,
		`{"open": true`:                       ``,
	}
	for input, want := range tests {
		if got := extractJSON(input); got != want {
			t.Fatalf("extractJSON(%q) = %q, want %q", input, got, want)
		}
	}
}
