package chat

import (
	"context"
	"fmt"
	"sync"
)

// RecordingRoom is an in-memory Room that records what was posted. The
// webhook transport uses it to collect replies for a request; tests use it
// as a fake.
type RecordingRoom struct {
	mu      sync.Mutex
	users   map[int]User
	replies []string
	// Err, when set, is returned by PostReply and PostMessage
	Err error
}

// NewRecordingRoom creates a room whose directory contains users
func NewRecordingRoom(users ...User) *RecordingRoom {
	r := &RecordingRoom{users: map[int]User{}}
	for _, u := range users {
		r.users[u.ProfileID] = u
	}
	return r
}

func (r *RecordingRoom) PostReply(ctx context.Context, msg Message, text string) error {
	return r.post(ctx, fmt.Sprintf(":%d %s", msg.ID, text))
}

func (r *RecordingRoom) PostMessage(ctx context.Context, text string) error {
	return r.post(ctx, text)
}

func (r *RecordingRoom) post(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.replies = append(r.replies, text)
	return nil
}

func (r *RecordingRoom) LookupUser(_ context.Context, profileID int) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[profileID]
	if !ok {
		return User{}, fmt.Errorf("profile %d: %w", profileID, ErrUnknownUser)
	}
	return u, nil
}

// AddUser adds or replaces a directory entry
func (r *RecordingRoom) AddUser(u User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ProfileID] = u
}

// Posted returns everything posted so far
func (r *RecordingRoom) Posted() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.replies...)
}
