package command

import (
	"context"
	"regexp"

	"github.com/socvr/chatbot-go/pkg/chat"
	"github.com/socvr/chatbot-go/pkg/model"
)

// politeness is accepted after any command and ignored
const politeness = `(?:[\s,]+(?:please|pls|plz|thanks|thank you))?\s*[.!]?`

// Pattern compiles expr into a case-insensitive pattern anchored to the
// whole message, allowing trailing politeness. Capture groups in expr
// become Invocation.Args.
func Pattern(expr string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)^(?:` + expr + `)` + politeness + `$`)
}

// Action runs a matched command
type Action func(ctx context.Context, inv Invocation) error

// Invocation is what an Action receives
type Invocation struct {
	Command Command
	Message chat.Message
	Room    chat.Room
	// Args holds the pattern's capture groups
	Args []string
	// Registry is every command of the dispatcher, in order
	Registry []Command
}

// Reply posts text as a reply to the invoking message
func (inv Invocation) Reply(ctx context.Context, text string) error {
	return inv.Room.PostReply(ctx, inv.Message, text)
}

// Command describes a chat command
type Command struct {
	Name        string
	Description string
	Usage       string
	Pattern     *regexp.Regexp
	// RequiredGroup, when set, restricts the command to members of the group
	RequiredGroup *model.Group
	Action        Action
}
