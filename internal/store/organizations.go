package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var ErrOrganizationNotFound = errors.New("organization not found")

type Organization struct {
	ID   string
	Name string
}

func (s *Store) CreateOrganization(ctx context.Context, name string) (Organization, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Organization{}, fmt.Errorf("organization name is required")
	}
	record := Organization{
		ID:   "org_" + uuid.NewString(),
		Name: name,
	}
	if _, err := s.db.ExecContext(
		ctx,
		`INSERT INTO organizations (id, name, created_at_unix) VALUES (?, ?, ?)`,
		record.ID,
		record.Name,
		s.now().Unix(),
	); err != nil {
		return Organization{}, fmt.Errorf("create organization: %w", err)
	}
	return record, nil
}

// LinkWorkspace maps a messaging workspace onto an organization, replacing any previous link.
func (s *Store) LinkWorkspace(ctx context.Context, workspaceID, organizationID string) error {
	workspaceID = strings.TrimSpace(workspaceID)
	organizationID = strings.TrimSpace(organizationID)
	if workspaceID == "" || organizationID == "" {
		return fmt.Errorf("workspace id and organization id are required")
	}
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM organizations WHERE id = ?`, organizationID).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrOrganizationNotFound
		}
		return fmt.Errorf("lookup organization: %w", err)
	}
	if _, err := s.db.ExecContext(
		ctx,
		`INSERT INTO workspace_links (workspace_id, organization_id, created_at_unix)
		 VALUES (?, ?, ?)
		 ON CONFLICT(workspace_id) DO UPDATE SET organization_id = excluded.organization_id`,
		workspaceID,
		organizationID,
		s.now().Unix(),
	); err != nil {
		return fmt.Errorf("link workspace: %w", err)
	}
	return nil
}

func (s *Store) LookupOrganization(ctx context.Context, workspaceID string) (string, error) {
	workspaceID = strings.TrimSpace(workspaceID)
	if workspaceID == "" {
		return "", ErrOrganizationNotFound
	}
	var organizationID string
	err := s.db.QueryRowContext(
		ctx,
		`SELECT organization_id FROM workspace_links WHERE workspace_id = ?`,
		workspaceID,
	).Scan(&organizationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrOrganizationNotFound
		}
		return "", fmt.Errorf("lookup organization: %w", err)
	}
	return organizationID, nil
}
