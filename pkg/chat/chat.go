// Package chat defines the transport-facing types the bot consumes: the
// incoming message, the room replies are posted to, and the user directory
// used to look up reputation and display names.
package chat

import (
	"context"
	"errors"
	"strings"
)

// ErrUnknownUser is returned by Room.LookupUser when the profile id is unknown
var ErrUnknownUser = errors.New("unknown chat user")

// User is a chat profile as the transport sees it
type User struct {
	ProfileID  int    `json:"profile_id"`
	Name       string `json:"name"`
	Reputation int    `json:"reputation"`
}

// Message is a single chat message
type Message struct {
	ID      int64  `json:"id"`
	Content string `json:"content"`
	Author  User   `json:"author"`
	RoomID  int    `json:"room_id"`
}

// Room is where replies go
type Room interface {
	// PostReply posts text as a reply to msg
	PostReply(ctx context.Context, msg Message, text string) error
	// PostMessage posts text to the room
	PostMessage(ctx context.Context, text string) error
	// LookupUser returns the profile of a user in the room's site
	LookupUser(ctx context.Context, profileID int) (User, error)
}

// Ping formats a user mention. Chat mentions cannot contain spaces.
func Ping(name string) string {
	return "@" + strings.ReplaceAll(name, " ", "")
}

// MessageBuilder builds outgoing message text
type MessageBuilder struct {
	b strings.Builder
}

// AppendPing appends a mention of name followed by a space
func (m *MessageBuilder) AppendPing(name string) *MessageBuilder {
	m.b.WriteString(Ping(name))
	m.b.WriteByte(' ')
	return m
}

// AppendText appends text verbatim
func (m *MessageBuilder) AppendText(text string) *MessageBuilder {
	m.b.WriteString(text)
	return m
}

// AppendCode appends text as inline code
func (m *MessageBuilder) AppendCode(text string) *MessageBuilder {
	m.b.WriteByte('`')
	m.b.WriteString(text)
	m.b.WriteByte('`')
	return m
}

func (m *MessageBuilder) String() string {
	return m.b.String()
}
