package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/socvr/chatbot-go/pkg/audit"
	"github.com/socvr/chatbot-go/pkg/chat"
	"github.com/socvr/chatbot-go/pkg/store"
)

// MemberLookup finds a message author's memberships. store.Reader
// satisfies it.
type MemberLookup interface {
	FindUserByProfileID(ctx context.Context, profileID int) (*store.User, error)
}

// Dispatcher matches messages against an ordered command list
type Dispatcher struct {
	commands []Command
	members  MemberLookup
	log      *zap.Logger
	auditor  audit.Auditor
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithLogger sets the structured logger
func WithLogger(log *zap.Logger) Option {
	return func(d *Dispatcher) { d.log = log }
}

// WithAuditor sets where denied commands are recorded
func WithAuditor(a audit.Auditor) Option {
	return func(d *Dispatcher) { d.auditor = a }
}

// NewDispatcher creates a Dispatcher. Earlier commands win ties.
func NewDispatcher(members MemberLookup, commands []Command, opts ...Option) (*Dispatcher, error) {
	seen := make(map[string]bool, len(commands))
	for i, c := range commands {
		if c.Name == "" {
			return nil, fmt.Errorf("command %d has no name", i)
		}
		if c.Pattern == nil || c.Action == nil {
			return nil, fmt.Errorf("command %q needs a pattern and an action", c.Name)
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("duplicate command %q", c.Name)
		}
		seen[c.Name] = true
	}

	d := &Dispatcher{
		commands: append([]Command(nil), commands...),
		members:  members,
		log:      zap.NewNop(),
		auditor:  audit.Discard,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Commands returns the registry in dispatch order
func (d *Dispatcher) Commands() []Command {
	return append([]Command(nil), d.commands...)
}

// Match returns the first command matching text and its capture groups
func (d *Dispatcher) Match(text string) (Command, []string, bool) {
	text = strings.TrimSpace(text)
	for _, c := range d.commands {
		if m := c.Pattern.FindStringSubmatch(text); m != nil {
			return c, m[1:], true
		}
	}
	return Command{}, nil, false
}

// Dispatch runs the command matching msg, if any, and reports whether one
// matched. Errors are infrastructure failures.
func (d *Dispatcher) Dispatch(ctx context.Context, msg chat.Message, room chat.Room) (bool, error) {
	cmd, args, ok := d.Match(msg.Content)
	if !ok {
		return false, nil
	}

	log := d.log.With(
		zap.String("command", cmd.Name),
		zap.Int("actor", msg.Author.ProfileID),
		zap.Int64("message_id", msg.ID),
	)

	if cmd.RequiredGroup != nil {
		allowed, err := d.isMember(ctx, msg.Author.ProfileID, cmd)
		if err != nil {
			return true, err
		}
		if !allowed {
			log.Info("command denied", zap.Stringer("required_group", *cmd.RequiredGroup))
			d.auditor.Log(audit.CommandDeniedEvent{
				ActorID:       msg.Author.ProfileID,
				RoomID:        msg.RoomID,
				Command:       cmd.Name,
				RequiredGroup: cmd.RequiredGroup.String(),
			})
			text := fmt.Sprintf("You need to be in the %s group to run this command.", *cmd.RequiredGroup)
			if err := room.PostReply(ctx, msg, text); err != nil {
				return true, fmt.Errorf("failed to post denial: %w", err)
			}
			return true, nil
		}
	}

	log.Debug("running command")
	err := cmd.Action(ctx, Invocation{
		Command:  cmd,
		Message:  msg,
		Room:     room,
		Args:     args,
		Registry: d.Commands(),
	})
	if err != nil {
		log.Error("command failed", zap.Error(err))
		return true, fmt.Errorf("command %q: %w", cmd.Name, err)
	}
	return true, nil
}

func (d *Dispatcher) isMember(ctx context.Context, profileID int, cmd Command) (bool, error) {
	user, err := d.members.FindUserByProfileID(ctx, profileID)
	if errors.Is(err, store.ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up memberships of user %d: %w", profileID, err)
	}
	return user.InGroup(*cmd.RequiredGroup), nil
}
