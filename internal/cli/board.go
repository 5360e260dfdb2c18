package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dwizi/board-agent/internal/store"
)

func newBoardCommand(logger *slog.Logger) *cobra.Command {
	var workspaceID string
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Manage the boards of a linked workspace",
	}
	cmd.PersistentFlags().StringVar(&workspaceID, "workspace", "", "messaging workspace id")
	cmd.AddCommand(newBoardAddCommand(logger, &workspaceID))
	cmd.AddCommand(newBoardListCommand(logger, &workspaceID))
	return cmd
}

func newBoardAddCommand(logger *slog.Logger, workspaceID *string) *cobra.Command {
	var createdBy string
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a named board",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(strings.Join(args, " "))
			runtime, err := openRuntime(logger)
			if err != nil {
				return err
			}
			defer runtime.Close()

			organizationID, err := lookupWorkspaceOrganization(cmd, runtime.Store(), *workspaceID)
			if err != nil {
				return err
			}
			board, err := runtime.Store().CreateBoard(cmd.Context(), organizationID, name, createdBy)
			if errors.Is(err, store.ErrBoardExists) {
				return fmt.Errorf("board %q already exists", name)
			}
			if err != nil {
				return err
			}
			cmd.Printf("Created board %s (%s)\n", board.Name, board.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&createdBy, "created-by", "", "user id recorded as the board creator")
	return cmd
}

func newBoardListCommand(logger *slog.Logger, workspaceID *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List boards",
		RunE: func(cmd *cobra.Command, args []string) error {
			runtime, err := openRuntime(logger)
			if err != nil {
				return err
			}
			defer runtime.Close()

			organizationID, err := lookupWorkspaceOrganization(cmd, runtime.Store(), *workspaceID)
			if err != nil {
				return err
			}
			boards, err := runtime.Store().ListBoards(cmd.Context(), organizationID)
			if err != nil {
				return err
			}
			if len(boards) == 0 {
				cmd.Println("No boards yet.")
				return nil
			}
			for _, board := range boards {
				cmd.Printf("%s\t%s\n", board.Name, board.ID)
			}
			return nil
		},
	}
}

func lookupWorkspaceOrganization(cmd *cobra.Command, sqlStore *store.Store, workspaceID string) (string, error) {
	workspaceID = strings.TrimSpace(workspaceID)
	if workspaceID == "" {
		return "", fmt.Errorf("--workspace is required")
	}
	organizationID, err := sqlStore.LookupOrganization(cmd.Context(), workspaceID)
	if errors.Is(err, store.ErrOrganizationNotFound) {
		return "", fmt.Errorf("workspace %s is not linked; run board-agent link first", workspaceID)
	}
	return organizationID, err
}
