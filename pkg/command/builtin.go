package command

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/socvr/chatbot-go/pkg/eligibility"
	"github.com/socvr/chatbot-go/pkg/model"
	"github.com/socvr/chatbot-go/pkg/resolution"
	"github.com/socvr/chatbot-go/pkg/store"
)

// Resolver is the part of resolution.Resolver the request commands use
type Resolver interface {
	Resolve(ctx context.Context, in resolution.Input) (string, error)
}

// Deps are the collaborators of the built-in commands
type Deps struct {
	Resolver Resolver
	Store    store.Reader
	// Now defaults to time.Now
	Now func() time.Time
}

// Builtins returns the built-in commands in registration order
func Builtins(deps Deps) []Command {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return []Command{
		{
			Name:        "Approve Request",
			Description: "Approves a pending permission request.",
			Usage:       "approve request [#]",
			Pattern:     Pattern(`approve request (\d+)`),
			Action:      resolveAction(deps, eligibility.OutcomeApprove),
		},
		{
			Name:        "Reject Request",
			Description: "Rejects a pending permission request.",
			Usage:       "reject request [#]",
			Pattern:     Pattern(`reject request (\d+)`),
			Action:      resolveAction(deps, eligibility.OutcomeReject),
		},
		{
			Name:          "View Requests",
			Description:   "Lists the permission requests that are waiting for a decision.",
			Usage:         "view requests",
			Pattern:       Pattern(`view requests`),
			RequiredGroup: model.GroupPtr(model.GroupReviewer),
			Action:        viewRequests(deps),
		},
		{
			Name:        "Membership",
			Description: "Shows which permission groups you belong to.",
			Usage:       "membership",
			Pattern:     Pattern(`membership|my groups`),
			Action:      membership(deps),
		},
		{
			Name:        "Commands",
			Description: "Lists the commands the bot understands.",
			Usage:       "commands",
			Pattern:     Pattern(`commands|help`),
			Action:      listCommands,
		},
	}
}

func resolveAction(deps Deps, outcome eligibility.Outcome) Action {
	return func(ctx context.Context, inv Invocation) error {
		id, err := strconv.Atoi(inv.Args[0])
		if err != nil {
			return inv.Reply(ctx, "That isn't a valid request number.")
		}

		reply, err := deps.Resolver.Resolve(ctx, resolution.Input{
			RequestID:      id,
			ActorProfileID: inv.Message.Author.ProfileID,
			Outcome:        outcome,
			Directory:      inv.Room,
			RoomID:         inv.Message.RoomID,
		})
		if f, ok := resolution.AsFailure(err); ok {
			return inv.Reply(ctx, f.Message)
		}
		if err != nil {
			return err
		}
		return inv.Reply(ctx, reply)
	}
}

func viewRequests(deps Deps) Action {
	return func(ctx context.Context, inv Invocation) error {
		pending, err := deps.Store.ListPendingRequests(ctx)
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			return inv.Reply(ctx, "There are no pending permission requests.")
		}

		now := deps.Now()
		var b strings.Builder
		fmt.Fprintf(&b, "There %s %d pending permission %s:", pluralize(len(pending), "is", "are"), len(pending), pluralize(len(pending), "request", "requests"))
		for _, r := range pending {
			name := strconv.Itoa(r.RequestingUserID)
			if u, err := inv.Room.LookupUser(ctx, r.RequestingUserID); err == nil && u.Name != "" {
				name = u.Name
			}
			fmt.Fprintf(&b, "\n#%d %s wants to join %s (%s ago)", r.ID, name, r.RequestedGroup, formatAge(now.Sub(r.CreatedOn)))
		}
		return inv.Reply(ctx, b.String())
	}
}

func membership(deps Deps) Action {
	return func(ctx context.Context, inv Invocation) error {
		user, err := deps.Store.FindUserByProfileID(ctx, inv.Message.Author.ProfileID)
		if err != nil && !errors.Is(err, store.ErrUserNotFound) {
			return err
		}
		if user == nil || len(user.Memberships) == 0 {
			return inv.Reply(ctx, "You are not in any permission groups.")
		}

		parts := make([]string, 0, len(user.Memberships))
		for _, m := range user.Memberships {
			parts = append(parts, fmt.Sprintf("%s (since %s)", m.Group, m.JoinedOn.UTC().Format("2006-01-02")))
		}
		return inv.Reply(ctx, "You are in: "+strings.Join(parts, ", ")+".")
	}
}

func listCommands(ctx context.Context, inv Invocation) error {
	var b strings.Builder
	b.WriteString("Commands:")
	for _, c := range inv.Registry {
		fmt.Fprintf(&b, "\n%s - `%s` - %s", c.Name, c.Usage, c.Description)
		if c.RequiredGroup != nil {
			fmt.Fprintf(&b, " (%s only)", *c.RequiredGroup)
		}
	}
	return inv.Reply(ctx, b.String())
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func formatAge(d time.Duration) string {
	switch {
	case d < time.Hour:
		m := int(d / time.Minute)
		return fmt.Sprintf("%d %s", m, pluralize(m, "minute", "minutes"))
	case d < 24*time.Hour:
		h := int(d / time.Hour)
		return fmt.Sprintf("%d %s", h, pluralize(h, "hour", "hours"))
	default:
		days := int(d / (24 * time.Hour))
		return fmt.Sprintf("%d %s", days, pluralize(days, "day", "days"))
	}
}
