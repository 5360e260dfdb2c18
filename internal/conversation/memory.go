package conversation

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dwizi/board-agent/internal/store"
)

type memoryKey struct {
	userID    string
	channelID string
}

// MemoryBackend is a process-local Backend. It is safe for concurrent use.
type MemoryBackend struct {
	mu   sync.Mutex
	rows map[memoryKey]store.ConversationRecord
	now  func() time.Time
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		rows: map[memoryKey]store.ConversationRecord{},
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (m *MemoryBackend) GetConversation(_ context.Context, userID, channelID string) (store.ConversationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.rows[newMemoryKey(userID, channelID)]
	if !ok {
		return store.ConversationRecord{}, store.ErrConversationNotFound
	}
	record.LastTasks = cloneTasks(record.LastTasks)
	return record, nil
}

func (m *MemoryBackend) UpsertConversation(_ context.Context, input store.UpsertConversationInput) error {
	key := newMemoryKey(input.UserID, input.ChannelID)
	if key.userID == "" || key.channelID == "" {
		return fmt.Errorf("user id and channel id are required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.rows[key]
	if !ok {
		record = store.ConversationRecord{
			UserID:    key.userID,
			ChannelID: key.channelID,
			LastTasks: []store.ConversationTask{},
		}
	}
	record.OrganizationID = strings.TrimSpace(input.OrganizationID)
	if action := strings.TrimSpace(input.LastAction); action != "" {
		record.LastAction = action
	}
	if input.ReplaceLastTasks {
		record.LastTasks = cloneTasks(input.LastTasks)
	}
	record.ExpiresAt = input.ExpiresAt.UTC()
	record.UpdatedAt = m.now()
	m.rows[key] = record
	return nil
}

func (m *MemoryBackend) PruneExpiredConversations(_ context.Context, now time.Time) (int64, error) {
	if now.IsZero() {
		now = m.now()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed int64
	for key, record := range m.rows {
		if !record.ExpiresAt.After(now) {
			delete(m.rows, key)
			removed++
		}
	}
	return removed, nil
}

func newMemoryKey(userID, channelID string) memoryKey {
	return memoryKey{userID: strings.TrimSpace(userID), channelID: strings.TrimSpace(channelID)}
}

func cloneTasks(tasks []store.ConversationTask) []store.ConversationTask {
	out := make([]store.ConversationTask, len(tasks))
	copy(out, tasks)
	return out
}
