package intent

import (
	"regexp"
	"strings"
)

// mentionPattern matches angle-bracket references to users or channels such as
// <@U123>, <@!123>, <#C123|general> regardless of the originating platform.
var mentionPattern = regexp.MustCompile(`<[@#][^<>]*>`)

// Normalize removes user/channel reference tokens and surrounding whitespace. Inner spacing is
// kept so task text is stored as typed.
func Normalize(text string) string {
	return strings.TrimSpace(mentionPattern.ReplaceAllString(text, ""))
}
