package taskagent

import (
	"fmt"
	"strings"

	"github.com/dwizi/board-agent/internal/store"
)

const (
	pendingGlyph   = "⬜"
	completedGlyph = "✅"
)

const (
	notConnectedReply = "This workspace isn't connected to a task board yet. Ask an admin to link it, then try again."
	apologyReply      = "Sorry, something went wrong while updating your tasks. Please try again."
	emptyListReply    = "You're all clear, no tasks yet! Add one with \"add buy milk\"."
	addClarifyReply   = "What should I add? Try \"add call John about pricing\"."
	unresolvedReply   = "I couldn't tell which task you mean. Say \"list my tasks\" first, then use the task number."
	vanishedReply     = "That task no longer exists."
	editClarifyReply  = "What should the task say instead? Try \"change task 2 to call Maria\"."
	editNumberReply   = "Which task number should I change? Say \"list my tasks\" to see the numbers, then \"change task 2 to ...\"."
	unsureReply       = "I'm not sure what you want to do."
	vagueReply        = "Could you be a bit more specific? Say \"help\" to see what I can do."
)

const helpReply = `Here's what I can do with your tasks:
• "list my tasks" shows everything on your boards
• "add call John about pricing" creates a task
• "complete task 2" or "mark the report as done" checks a task off
• "delete task 3" or "delete that" removes a task
• "change task 2 to call Maria" renames a task
Numbers and "that" refer to the last list I showed you.`

func renderTaskList(tasks []store.TaskRecord) string {
	var b strings.Builder
	b.WriteString("Here are your tasks:\n")
	pending, completed := 0, 0
	for i, task := range tasks {
		glyph := pendingGlyph
		if task.Checked {
			glyph = completedGlyph
			completed++
		} else {
			pending++
		}
		fmt.Fprintf(&b, "%d. %s %s [%s]\n", i+1, task.Content, glyph, task.BoardName)
	}
	fmt.Fprintf(&b, "\n%d pending, %d completed", pending, completed)
	return b.String()
}
