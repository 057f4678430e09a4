package endpoints

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socvr/chatbot-go/pkg/chat"
	"github.com/socvr/chatbot-go/pkg/model"
)

func decodeReplies(t *testing.T, body []byte) MessageResponse {
	t.Helper()
	var resp MessageResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp
}

func TestHandleMessage_ApprovesRequest(t *testing.T) {
	s := newTestServer(t)

	rec := s.post(t, "/rooms/41570/messages", MessageRequest{
		Message: chat.Message{ID: 100, Content: "Approve request 7 please", Author: chat.User{ProfileID: reviewerID, Name: "Rev"}},
		Users:   []chat.User{{ProfileID: requesterID, Name: "Alice Smith", Reputation: 3000}},
	}, bearer(t))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeReplies(t, rec.Body.Bytes())
	assert.True(t, resp.Handled)
	assert.Equal(t, []string{":100 @AliceSmith has been added to the Reviewer group."}, resp.Replies)

	user, err := s.store.FindUserByProfileID(context.Background(), requesterID)
	require.NoError(t, err)
	assert.True(t, user.InGroup(model.GroupReviewer))
	assert.True(t, user.OptInToReviewTracking)
}

func TestHandleMessage_BusinessFailureIsAReply(t *testing.T) {
	s := newTestServer(t)

	rec := s.post(t, "/rooms/41570/messages", MessageRequest{
		Message: chat.Message{ID: 100, Content: "approve request 8", Author: chat.User{ProfileID: reviewerID}},
	}, bearer(t))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeReplies(t, rec.Body.Bytes())
	assert.True(t, resp.Handled)
	require.Len(t, resp.Replies, 1)
	assert.Contains(t, resp.Replies[0], "I can't find that permission request.")
}

func TestHandleMessage_Unmatched(t *testing.T) {
	s := newTestServer(t)

	rec := s.post(t, "/rooms/41570/messages", MessageRequest{
		Message: chat.Message{ID: 100, Content: "good morning", Author: chat.User{ProfileID: reviewerID}},
	}, bearer(t))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeReplies(t, rec.Body.Bytes())
	assert.False(t, resp.Handled)
	assert.Empty(t, resp.Replies)
}

func TestHandleMessage_RequiresToken(t *testing.T) {
	s := newTestServer(t)

	rec := s.post(t, "/rooms/41570/messages", MessageRequest{
		Message: chat.Message{ID: 100, Content: "approve request 7", Author: chat.User{ProfileID: reviewerID}},
	}, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req, err := s.store.FindRequestByID(context.Background(), requestID)
	require.NoError(t, err)
	assert.False(t, req.Resolved())
}

func TestHandleMessage_BadRequests(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		path string
		body interface{}
		code int
	}{
		{
			name: "missing content",
			path: "/rooms/1/messages",
			body: MessageRequest{Message: chat.Message{ID: 1, Author: chat.User{ProfileID: reviewerID}}},
			code: http.StatusBadRequest,
		},
		{
			name: "missing author",
			path: "/rooms/1/messages",
			body: MessageRequest{Message: chat.Message{ID: 1, Content: "commands"}},
			code: http.StatusBadRequest,
		},
		{
			name: "not an object",
			path: "/rooms/1/messages",
			body: []int{1, 2},
			code: http.StatusBadRequest,
		},
		{
			name: "non numeric room",
			path: "/rooms/lobby/messages",
			body: MessageRequest{Message: chat.Message{ID: 1, Content: "commands", Author: chat.User{ProfileID: reviewerID}}},
			code: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.post(t, tt.path, tt.body, bearer(t))
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}
