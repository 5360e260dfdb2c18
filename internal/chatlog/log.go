// Package chatlog appends task-agent conversations to per-channel markdown transcripts.
package chatlog

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"
)

const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

type Entry struct {
	WorkspaceID string
	Source      string
	ChannelID   string
	Direction   string
	ActorID     string
	Text        string
	Timestamp   time.Time
}

// Writer appends entries under <root>/<workspace>/logs/chats/<source>/<channel>.md.
// Appends are serialized so concurrent messages never interleave within an entry.
type Writer struct {
	root string
	mu   sync.Mutex
}

var pathSanitizer = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

func New(root string) *Writer {
	return &Writer{root: strings.TrimSpace(root)}
}

// Path returns the transcript file for a channel, or "" when the writer is disabled.
func (w *Writer) Path(workspaceID, source, channelID string) string {
	if w == nil || w.root == "" {
		return ""
	}
	workspace := sanitizeSegment(workspaceID)
	if workspace == "" {
		return ""
	}
	return filepath.Join(w.root, workspace, "logs", "chats", orUnknown(sanitizeSegment(source)), orUnknown(sanitizeSegment(channelID))+".md")
}

// Append is a no-op when the writer has no root, the entry has no workspace, or the text is blank.
func (w *Writer) Append(entry Entry) error {
	logPath := w.Path(entry.WorkspaceID, entry.Source, entry.ChannelID)
	if logPath == "" {
		return nil
	}
	text := strings.TrimSpace(entry.Text)
	if text == "" {
		return nil
	}
	timestamp := entry.Timestamp.UTC()
	if entry.Timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}
	direction := strings.TrimSpace(strings.ToLower(entry.Direction))
	if direction == "" {
		direction = DirectionInbound
	}
	actor := strings.TrimSpace(entry.ActorID)
	if actor == "" {
		actor = "board-agent"
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("create transcript dir: %w", err)
	}
	header := ""
	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		header = fmt.Sprintf("# Task Chat\n\n- source: `%s`\n- channel_id: `%s`\n\n",
			orUnknown(sanitizeSegment(entry.Source)), strings.TrimSpace(entry.ChannelID))
	}
	body := fmt.Sprintf(
		"## %s `%s`\n- actor: `%s`\n\n%s\n\n",
		timestamp.Format(time.RFC3339),
		strings.ToUpper(direction),
		actor,
		text,
	)

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open transcript: %w", err)
	}
	defer file.Close()

	if _, err := file.WriteString(header + body); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	return nil
}

func sanitizeSegment(value string) string {
	trimmed := strings.TrimSpace(value)
	trimmed = strings.ReplaceAll(trimmed, " ", "-")
	trimmed = pathSanitizer.ReplaceAllString(trimmed, "-")
	trimmed = strings.Trim(trimmed, "-.")
	return strings.ToLower(trimmed)
}

func orUnknown(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
