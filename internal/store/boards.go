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

var ErrBoardExists = errors.New("board already exists")

type Board struct {
	ID             string
	OrganizationID string
	Name           string
	CreatedBy      string
	CreatedAt      time.Time
}

// CreateBoard adds a named board to an organization. Names are unique per organization,
// ignoring case.
func (s *Store) CreateBoard(ctx context.Context, organizationID, name, createdBy string) (Board, error) {
	organizationID = strings.TrimSpace(organizationID)
	name = strings.TrimSpace(name)
	if organizationID == "" || name == "" {
		return Board{}, fmt.Errorf("organization id and board name are required")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Board{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, _, err := findBoardTx(ctx, tx, organizationID, []string{name}); err == nil {
		return Board{}, ErrBoardExists
	} else if !errors.Is(err, sql.ErrNoRows) {
		return Board{}, err
	}

	nowUnix := s.now().Unix()
	record := Board{
		ID:             "board_" + uuid.NewString(),
		OrganizationID: organizationID,
		Name:           name,
		CreatedBy:      strings.TrimSpace(createdBy),
		CreatedAt:      time.Unix(nowUnix, 0).UTC(),
	}
	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO boards (id, organization_id, name, created_by, created_at_unix) VALUES (?, ?, ?, ?, ?)`,
		record.ID,
		record.OrganizationID,
		record.Name,
		nullIfEmpty(record.CreatedBy),
		nowUnix,
	); err != nil {
		return Board{}, fmt.Errorf("create board: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Board{}, fmt.Errorf("commit board create: %w", err)
	}
	return record, nil
}

func (s *Store) ListBoards(ctx context.Context, organizationID string) ([]Board, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, organization_id, name, COALESCE(created_by, ''), created_at_unix
		 FROM boards
		 WHERE organization_id = ?
		 ORDER BY created_at_unix ASC, id ASC`,
		strings.TrimSpace(organizationID),
	)
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	defer rows.Close()

	results := []Board{}
	for rows.Next() {
		var (
			record        Board
			createdAtUnix int64
		)
		if err := rows.Scan(&record.ID, &record.OrganizationID, &record.Name, &record.CreatedBy, &createdAtUnix); err != nil {
			return nil, fmt.Errorf("scan board: %w", err)
		}
		record.CreatedAt = time.Unix(createdAtUnix, 0).UTC()
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate boards: %w", err)
	}
	return results, nil
}
