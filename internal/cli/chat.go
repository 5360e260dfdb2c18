package cli

import (
	"bufio"
	"context"
	"log/slog"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/dwizi/board-agent/internal/app"
	"github.com/dwizi/board-agent/internal/taskagent"
)

var (
	userPromptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("111")).Bold(true)
	agentPromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("78")).Bold(true)
	hintStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
)

type chatIdentity struct {
	workspaceID string
	userID      string
	channelID   string
}

func (c chatIdentity) input(text string) taskagent.MessageInput {
	return taskagent.MessageInput{
		Text:        text,
		UserID:      c.userID,
		ChannelID:   c.channelID,
		WorkspaceID: c.workspaceID,
	}
}

func newChatCommand(logger *slog.Logger) *cobra.Command {
	var (
		identity chatIdentity
		message  string
	)

	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Talk to the task agent against the local database",
		Long:  "Sends one message when given, otherwise opens a line-based chat session.",
		RunE: func(cmd *cobra.Command, args []string) error {
			runtime, err := openRuntime(logger)
			if err != nil {
				return err
			}
			defer runtime.Close()
			handler := runtime.Handler(app.SourceCLI)

			text := strings.TrimSpace(message)
			if text == "" && len(args) > 0 {
				text = strings.TrimSpace(strings.Join(args, " "))
			}
			if text != "" {
				cmd.Println(handler.HandleMessage(cmd.Context(), identity.input(text)))
				return nil
			}

			cmd.Println(hintStyle.Render("Chatting in workspace " + identity.workspaceID + " as " + identity.userID + ". Type /exit to quit."))
			return runInteractiveChat(cmd, handler, identity)
		},
	}
	cmd.Flags().StringVar(&identity.workspaceID, "workspace", "local", "messaging workspace id")
	cmd.Flags().StringVar(&identity.userID, "user", "cli-user", "user id the messages come from")
	cmd.Flags().StringVar(&identity.channelID, "channel", "cli", "channel id for conversation context")
	cmd.Flags().StringVarP(&message, "message", "m", "", "single message to send (non-interactive mode)")
	return cmd
}

func runInteractiveChat(cmd *cobra.Command, handler app.MessageRouter, identity chatIdentity) error {
	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	for {
		cmd.Print(userPromptStyle.Render("you>") + " ")
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "/exit" || text == "/quit" {
			return nil
		}
		printAgentReply(cmd, handler.HandleMessage(ctx, identity.input(text)))
	}
	return scanner.Err()
}

func printAgentReply(cmd *cobra.Command, reply string) {
	prefix := agentPromptStyle.Render("agent>")
	reply = strings.TrimSpace(reply)
	if reply == "" {
		cmd.Println(prefix + " (no reply)")
		return
	}
	for index, line := range strings.Split(reply, "\n") {
		line = strings.TrimRight(line, "\r")
		if index == 0 {
			cmd.Printf("%s %s\n", prefix, line)
			continue
		}
		cmd.Printf("       %s\n", line)
	}
}
