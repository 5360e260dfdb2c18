package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrTaskNotFound = errors.New("task not found")

type TaskRecord struct {
	ID             string
	BoardID        string
	BoardName      string
	OrganizationID string
	CreatedBy      string
	Content        string
	Checked        bool
	Position       int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type CreateTaskInput struct {
	OrganizationID string
	UserID         string
	Content        string
	// BoardName targets an existing board; unknown names fall back to the default board.
	BoardName string
}

const taskColumns = `t.id, t.board_id, b.name, t.organization_id, t.created_by, t.content,
	t.checked, t.position, t.created_at_unix, t.updated_at_unix`

func (s *Store) ListUserTasks(ctx context.Context, userID, organizationID string) ([]TaskRecord, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+taskColumns+`
		 FROM tasks t
		 INNER JOIN boards b ON b.id = t.board_id
		 WHERE t.organization_id = ? AND t.created_by = ?
		 ORDER BY t.created_at_unix DESC, t.position ASC, t.id ASC`,
		strings.TrimSpace(organizationID),
		strings.TrimSpace(userID),
	)
	if err != nil {
		return nil, fmt.Errorf("list user tasks: %w", err)
	}
	defer rows.Close()

	results := []TaskRecord{}
	for rows.Next() {
		record, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return results, nil
}

func (s *Store) LookupTask(ctx context.Context, id string) (TaskRecord, error) {
	return lookupTask(ctx, s.db, id)
}

// CreateTask appends a task to the requested board, the organization's default board, or a
// newly created default board, in that order of preference.
func (s *Store) CreateTask(ctx context.Context, input CreateTaskInput) (TaskRecord, error) {
	organizationID := strings.TrimSpace(input.OrganizationID)
	userID := strings.TrimSpace(input.UserID)
	content := strings.TrimSpace(input.Content)
	if organizationID == "" || userID == "" {
		return TaskRecord{}, fmt.Errorf("organization id and user id are required")
	}
	if content == "" {
		return TaskRecord{}, fmt.Errorf("task content is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return TaskRecord{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	nowUnix := s.now().Unix()
	boardID, boardName, err := s.resolveBoardTx(ctx, tx, organizationID, userID, input.BoardName, nowUnix)
	if err != nil {
		return TaskRecord{}, err
	}

	var position int
	if err := tx.QueryRowContext(
		ctx,
		`SELECT COALESCE(MAX(position), 0) + 1 FROM tasks WHERE board_id = ?`,
		boardID,
	).Scan(&position); err != nil {
		return TaskRecord{}, fmt.Errorf("next task position: %w", err)
	}

	record := TaskRecord{
		ID:             "task_" + uuid.NewString(),
		BoardID:        boardID,
		BoardName:      boardName,
		OrganizationID: organizationID,
		CreatedBy:      userID,
		Content:        content,
		Position:       position,
		CreatedAt:      time.Unix(nowUnix, 0).UTC(),
		UpdatedAt:      time.Unix(nowUnix, 0).UTC(),
	}
	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO tasks (
			id, board_id, organization_id, created_by, content, checked, position,
			created_at_unix, updated_at_unix
		) VALUES (?, ?, ?, ?, ?, 0, ?, ?, ?)`,
		record.ID,
		record.BoardID,
		record.OrganizationID,
		record.CreatedBy,
		record.Content,
		record.Position,
		nowUnix,
		nowUnix,
	); err != nil {
		return TaskRecord{}, fmt.Errorf("insert task: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return TaskRecord{}, fmt.Errorf("commit task create: %w", err)
	}
	return record, nil
}

func (s *Store) SetTaskChecked(ctx context.Context, id string, checked bool) (TaskRecord, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return TaskRecord{}, ErrTaskNotFound
	}
	result, err := s.db.ExecContext(
		ctx,
		`UPDATE tasks SET checked = ?, updated_at_unix = ? WHERE id = ?`,
		boolToInt(checked),
		s.now().Unix(),
		id,
	)
	if err != nil {
		return TaskRecord{}, fmt.Errorf("set task checked: %w", err)
	}
	if rowsAffected, err := result.RowsAffected(); err == nil && rowsAffected == 0 {
		return TaskRecord{}, ErrTaskNotFound
	}
	return s.LookupTask(ctx, id)
}

func (s *Store) UpdateTaskContent(ctx context.Context, id, content string) (TaskRecord, error) {
	id = strings.TrimSpace(id)
	content = strings.TrimSpace(content)
	if id == "" {
		return TaskRecord{}, ErrTaskNotFound
	}
	if content == "" {
		return TaskRecord{}, fmt.Errorf("task content is required")
	}
	result, err := s.db.ExecContext(
		ctx,
		`UPDATE tasks SET content = ?, updated_at_unix = ? WHERE id = ?`,
		content,
		s.now().Unix(),
		id,
	)
	if err != nil {
		return TaskRecord{}, fmt.Errorf("update task content: %w", err)
	}
	if rowsAffected, err := result.RowsAffected(); err == nil && rowsAffected == 0 {
		return TaskRecord{}, ErrTaskNotFound
	}
	return s.LookupTask(ctx, id)
}

// DeleteTask removes a task and returns its last stored state.
func (s *Store) DeleteTask(ctx context.Context, id string) (TaskRecord, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return TaskRecord{}, ErrTaskNotFound
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return TaskRecord{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	record, err := lookupTask(ctx, tx, id)
	if err != nil {
		return TaskRecord{}, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return TaskRecord{}, fmt.Errorf("delete task: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return TaskRecord{}, fmt.Errorf("commit task delete: %w", err)
	}
	return record, nil
}

func (s *Store) resolveBoardTx(ctx context.Context, tx *sql.Tx, organizationID, userID, requested string, nowUnix int64) (string, string, error) {
	if requested = strings.TrimSpace(requested); requested != "" {
		id, name, err := findBoardTx(ctx, tx, organizationID, []string{requested})
		if err == nil {
			return id, name, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return "", "", err
		}
	}

	candidates := uniqueLower([]string{s.defaultBoardName, "Personal", "Default"})
	id, name, err := findBoardTx(ctx, tx, organizationID, candidates)
	if err == nil {
		return id, name, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", "", err
	}

	id = "board_" + uuid.NewString()
	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO boards (id, organization_id, name, created_by, created_at_unix) VALUES (?, ?, ?, ?, ?)`,
		id,
		organizationID,
		s.defaultBoardName,
		nullIfEmpty(userID),
		nowUnix,
	); err != nil {
		return "", "", fmt.Errorf("create default board: %w", err)
	}
	return id, s.defaultBoardName, nil
}

// findBoardTx returns the board whose name matches the earliest candidate, oldest board first.
func findBoardTx(ctx context.Context, tx *sql.Tx, organizationID string, names []string) (string, string, error) {
	for _, candidate := range names {
		var id, name string
		err := tx.QueryRowContext(
			ctx,
			`SELECT id, name FROM boards
			 WHERE organization_id = ? AND lower(name) = lower(?)
			 ORDER BY created_at_unix ASC, id ASC
			 LIMIT 1`,
			organizationID,
			strings.TrimSpace(candidate),
		).Scan(&id, &name)
		if err == nil {
			return id, name, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return "", "", fmt.Errorf("lookup board: %w", err)
		}
	}
	return "", "", sql.ErrNoRows
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

func lookupTask(ctx context.Context, db queryRower, id string) (TaskRecord, error) {
	row := db.QueryRowContext(
		ctx,
		`SELECT `+taskColumns+`
		 FROM tasks t
		 INNER JOIN boards b ON b.id = t.board_id
		 WHERE t.id = ?`,
		strings.TrimSpace(id),
	)
	record, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TaskRecord{}, ErrTaskNotFound
		}
		return TaskRecord{}, fmt.Errorf("lookup task: %w", err)
	}
	return record, nil
}

func scanTask(row rowScanner) (TaskRecord, error) {
	var (
		record        TaskRecord
		checked       int
		createdAtUnix int64
		updatedAtUnix int64
	)
	if err := row.Scan(
		&record.ID,
		&record.BoardID,
		&record.BoardName,
		&record.OrganizationID,
		&record.CreatedBy,
		&record.Content,
		&checked,
		&record.Position,
		&createdAtUnix,
		&updatedAtUnix,
	); err != nil {
		return TaskRecord{}, err
	}
	record.Checked = checked == 1
	record.CreatedAt = time.Unix(createdAtUnix, 0).UTC()
	record.UpdatedAt = time.Unix(updatedAtUnix, 0).UTC()
	return record, nil
}

func uniqueLower(values []string) []string {
	seen := map[string]struct{}{}
	results := make([]string, 0, len(values))
	for _, value := range values {
		key := strings.ToLower(strings.TrimSpace(value))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		results = append(results, value)
	}
	return results
}
