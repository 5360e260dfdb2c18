package llm

import "testing"

func TestSanitizeReplyStripsThinkBlocks(t *testing.T) {
	input := "<think>pondering the request</think>\n{\"action\":\"list\"}"
	if got := SanitizeReply(input); got != `{"action":"list"}` {
		t.Fatalf("unexpected sanitized reply %q", got)
	}
	fenced := "```think\nhmm\n```\nok"
	if got := SanitizeReply(fenced); got != "ok" {
		t.Fatalf("unexpected sanitized fenced reply %q", got)
	}
}

func TestRequiresAPIKey(t *testing.T) {
	cases := map[string]bool{
		"https://api.openai.com/v1": true,
		"http://localhost:11434/v1": false,
		"http://127.0.0.1:8080":     false,
		"http://ollama.internal/v1": false,
	}
	for baseURL, expected := range cases {
		if got := RequiresAPIKey(baseURL); got != expected {
			t.Fatalf("RequiresAPIKey(%q) = %v, want %v", baseURL, got, expected)
		}
	}
}
