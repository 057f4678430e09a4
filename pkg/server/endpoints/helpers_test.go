package endpoints

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/socvr/chatbot-go/pkg/command"
	"github.com/socvr/chatbot-go/pkg/config"
	"github.com/socvr/chatbot-go/pkg/eligibility"
	"github.com/socvr/chatbot-go/pkg/model"
	"github.com/socvr/chatbot-go/pkg/resolution"
	"github.com/socvr/chatbot-go/pkg/server"
	"github.com/socvr/chatbot-go/pkg/store"
	"github.com/socvr/chatbot-go/pkg/store/memdb"
)

const (
	testSecret  = "bridge-secret"
	reviewerID  = 1
	requesterID = 42
	requestID   = 7
)

var now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type testServer struct {
	*server.Server
	store   *memdb.Store
	handler http.Handler
}

// newTestServer wires a server over an in-memory store holding one pending
// Reviewer request (#7, from user 42) and an eligible reviewer (user 1)
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	st, err := memdb.NewStore()
	require.NoError(t, err)
	require.NoError(t, st.PutUser(ctx, store.User{
		ProfileID:   reviewerID,
		Memberships: []store.Membership{{Group: model.GroupReviewer, JoinedOn: now.AddDate(0, 0, -40)}},
	}))
	require.NoError(t, st.PutUser(ctx, store.User{ProfileID: requesterID}))
	for i := 1; i <= 5; i++ {
		require.NoError(t, st.PutReviewEvent(ctx, store.ReviewEvent{UserID: reviewerID, ReviewedOn: now.AddDate(0, 0, -i)}))
	}
	_, err = st.PutRequest(ctx, store.PermissionRequest{
		ID:               requestID,
		RequestingUserID: requesterID,
		RequestedGroup:   model.GroupReviewer,
		CreatedOn:        now.AddDate(0, 0, -2),
	})
	require.NoError(t, err)

	engine := eligibility.New(eligibility.Thresholds{
		ReputationToJoinReviewers: 3000,
		ReviewWindowDays:          30,
		ReviewsRequired:           3,
		MinReviewerTenureDays:     30,
	})
	resolver := resolution.New(st, engine, resolution.WithClock(func() time.Time { return now }))
	dispatcher, err := command.NewDispatcher(st, command.Builtins(command.Deps{
		Resolver: resolver,
		Store:    st,
		Now:      func() time.Time { return now },
	}))
	require.NoError(t, err)

	cfg := &config.ChatbotConfig{WebhookSecret: testSecret}
	srv := server.NewServer(st, dispatcher, cfg, nil, "127.0.0.1", "0")
	RegisterAll(srv)

	return &testServer{Server: srv, store: st, handler: srv.Handler()}
}

func bearer(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "test-bridge",
		"exp": time.Now().Add(time.Minute).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}

func (s *testServer) post(t *testing.T, path string, body interface{}, authorization string) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) get(path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
	return rec
}
