package store

import (
	"context"
	"errors"
	"testing"
)

func TestCreateBoardAndTarget(t *testing.T) {
	sqlStore, _, orgID := newTaskTestStore(t)
	ctx := context.Background()

	board, err := sqlStore.CreateBoard(ctx, orgID, "House", "U1")
	if err != nil {
		t.Fatalf("create board: %v", err)
	}
	if _, err := sqlStore.CreateBoard(ctx, orgID, "house", "U2"); !errors.Is(err, ErrBoardExists) {
		t.Fatalf("expected ErrBoardExists, got %v", err)
	}

	task, err := sqlStore.CreateTask(ctx, CreateTaskInput{
		OrganizationID: orgID,
		UserID:         "U1",
		Content:        "buy paint",
		BoardName:      "HOUSE",
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.BoardID != board.ID || task.BoardName != "House" {
		t.Fatalf("expected task on House board, got %+v", task)
	}

	boards, err := sqlStore.ListBoards(ctx, orgID)
	if err != nil {
		t.Fatalf("list boards: %v", err)
	}
	if len(boards) != 1 || boards[0].Name != "House" || boards[0].CreatedBy != "U1" {
		t.Fatalf("unexpected boards: %+v", boards)
	}
}
