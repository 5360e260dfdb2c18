package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
)

func newLinkCommand(logger *slog.Logger) *cobra.Command {
	var (
		workspaceID string
		orgName     string
	)
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Create an organization and link a messaging workspace to it",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspaceID = strings.TrimSpace(workspaceID)
			orgName = strings.TrimSpace(orgName)
			if workspaceID == "" || orgName == "" {
				return fmt.Errorf("--workspace and --org-name are required")
			}
			runtime, err := openRuntime(logger)
			if err != nil {
				return err
			}
			defer runtime.Close()

			org, err := runtime.Store().CreateOrganization(cmd.Context(), orgName)
			if err != nil {
				return err
			}
			if err := runtime.Store().LinkWorkspace(cmd.Context(), workspaceID, org.ID); err != nil {
				return err
			}
			cmd.Printf("Linked workspace %s to %s (%s)\n", workspaceID, org.Name, org.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&workspaceID, "workspace", "", "messaging workspace id")
	cmd.Flags().StringVar(&orgName, "org-name", "", "organization name")
	return cmd
}
