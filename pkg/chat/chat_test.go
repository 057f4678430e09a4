package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPing(t *testing.T) {
	assert.Equal(t, "@JaneDoe", Ping("Jane Doe"))
	assert.Equal(t, "@bob", Ping("bob"))
}

func TestMessageBuilder(t *testing.T) {
	var b MessageBuilder
	b.AppendPing("Jane Doe").AppendText("run ").AppendCode("view requests").AppendText(".")

	assert.Equal(t, "@JaneDoe run `view requests`.", b.String())
}

func TestRecordingRoom(t *testing.T) {
	ctx := context.Background()
	room := NewRecordingRoom(User{ProfileID: 1, Name: "alice", Reputation: 10})

	assert.NoError(t, room.PostReply(ctx, Message{ID: 55}, "hi"))
	assert.NoError(t, room.PostMessage(ctx, "hello all"))
	assert.Equal(t, []string{":55 hi", "hello all"}, room.Posted())

	u, err := room.LookupUser(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, 10, u.Reputation)

	_, err = room.LookupUser(ctx, 2)
	assert.ErrorIs(t, err, ErrUnknownUser)

	room.Err = errors.New("closed")
	assert.Error(t, room.PostMessage(ctx, "x"))
}
