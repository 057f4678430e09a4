package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cucumber/godog"

	"github.com/socvr/chatbot-go/pkg/audit"
	"github.com/socvr/chatbot-go/pkg/chat"
	"github.com/socvr/chatbot-go/pkg/eligibility"
	"github.com/socvr/chatbot-go/pkg/model"
	"github.com/socvr/chatbot-go/pkg/server/endpoints"
	"github.com/socvr/chatbot-go/pkg/store"
)

// botResponse is one webhook round trip
type botResponse struct {
	status  int
	body    []byte
	replies []string
}

type recordingAuditor struct {
	mu     sync.Mutex
	events []audit.Event
}

func (a *recordingAuditor) Log(e audit.Event) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
}

func (a *recordingAuditor) all() []audit.Event {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]audit.Event(nil), a.events...)
}

// StepsContext holds state shared between step definitions
type StepsContext struct {
	tc         *TestContext
	store      backingStore
	instance   *ServerInstance
	auditor    *recordingAuditor
	thresholds eligibility.Thresholds
	directory  map[int]chat.User

	mu            sync.Mutex
	nextMessageID int64
	responses     []botResponse
}

// NewStepsContext creates a new steps context
func NewStepsContext(tc *TestContext) *StepsContext {
	return &StepsContext{
		tc:      tc,
		auditor: &recordingAuditor{},
		thresholds: eligibility.Thresholds{
			ReputationToJoinReviewers: 3000,
			ReviewWindowDays:          30,
			ReviewsRequired:           3,
			MinReviewerTenureDays:     30,
		},
		directory:     make(map[int]chat.User),
		nextMessageID: 1000,
	}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		st, err := s.tc.NewStore(ctx)
		if err != nil {
			return ctx, err
		}
		s.store = st
		return ctx, nil
	})
	sc.After(func(ctx context.Context, _ *godog.Scenario, err error) (context.Context, error) {
		if s.instance != nil {
			s.instance.Stop()
		}
		return ctx, nil
	})

	// Background steps
	sc.Step(`^the eligibility thresholds are:$`, s.theEligibilityThresholdsAre)
	sc.Step(`^user (\d+) exists$`, s.userExists)
	sc.Step(`^user (\d+) joined the "([^"]*)" group (\d+) days ago$`, s.userJoinedGroupDaysAgo)
	sc.Step(`^user (\d+) has reviewed (\d+) items? in the last (\d+) days$`, s.userHasReviewed)
	sc.Step(`^user (\d+) is "([^"]*)" with (\d+) reputation$`, s.userIsWithReputation)
	sc.Step(`^user (\d+) asked to join the "([^"]*)" group in request (\d+)$`, s.userAskedToJoin)
	sc.Step(`^request (\d+) was already (approved|rejected) by user (\d+)$`, s.requestWasAlreadyResolved)

	// Chat steps
	sc.Step(`^user (\d+) says "([^"]*)"$`, s.userSays)
	sc.Step(`^user (\d+) says "([^"]*)" with an invalid token$`, s.userSaysWithAnInvalidToken)
	sc.Step(`^user (\d+) says "([^"]*)" with an expired token$`, s.userSaysWithAnExpiredToken)
	sc.Step(`^users (\d+) and (\d+) both say "([^"]*)" at the same time$`, s.usersSayAtTheSameTime)
	sc.Step(`^the thresholds change to require (\d+) reviews$`, s.theThresholdsChangeToRequireReviews)

	// Response steps
	sc.Step(`^the response status should be (\d+)$`, s.theResponseStatusShouldBe)
	sc.Step(`^the bot replies "([^"]*)"$`, s.theBotReplies)
	sc.Step(`^the bot reply contains "([^"]*)"$`, s.theBotReplyContains)
	sc.Step(`^the bot does not reply$`, s.theBotDoesNotReply)
	sc.Step(`^one reply is "([^"]*)" and the other is "([^"]*)"$`, s.oneReplyIsAndTheOtherIs)

	// State steps
	sc.Step(`^user (\d+) should be in the "([^"]*)" group$`, s.userShouldBeInGroup)
	sc.Step(`^user (\d+) should not be in the "([^"]*)" group$`, s.userShouldNotBeInGroup)
	sc.Step(`^user (\d+) should be opted in to review tracking$`, s.userShouldBeOptedIn)
	sc.Step(`^user (\d+) should not be opted in to review tracking$`, s.userShouldNotBeOptedIn)
	sc.Step(`^request (\d+) should be (approved|rejected|pending)$`, s.requestShouldBe)
	sc.Step(`^request (\d+) should have been handled by user (\d+)$`, s.requestShouldHaveBeenHandledBy)
	sc.Step(`^an? "([^"]*)" audit event should be recorded$`, s.anAuditEventShouldBeRecorded)
}

// Background steps

func (s *StepsContext) theEligibilityThresholdsAre(table *godog.Table) error {
	for _, row := range table.Rows {
		if len(row.Cells) != 2 {
			return fmt.Errorf("expected name | value rows")
		}
		var value int
		if _, err := fmt.Sscanf(row.Cells[1].Value, "%d", &value); err != nil {
			if row.Cells[0].Value == "setting" {
				continue
			}
			return fmt.Errorf("bad threshold %q: %w", row.Cells[1].Value, err)
		}
		switch row.Cells[0].Value {
		case "reputation to join reviewers":
			s.thresholds.ReputationToJoinReviewers = value
		case "review window days":
			s.thresholds.ReviewWindowDays = value
		case "reviews required":
			s.thresholds.ReviewsRequired = value
		case "reviewer tenure days":
			s.thresholds.MinReviewerTenureDays = value
		default:
			return fmt.Errorf("unknown threshold %q", row.Cells[0].Value)
		}
	}
	return nil
}

func (s *StepsContext) userExists(profileID int) error {
	return s.store.PutUser(context.Background(), store.User{ProfileID: profileID})
}

func (s *StepsContext) userJoinedGroupDaysAgo(profileID int, groupName string, days int) error {
	group, err := model.GroupString(groupName)
	if err != nil {
		return err
	}
	return s.store.PutUser(context.Background(), store.User{
		ProfileID:   profileID,
		Memberships: []store.Membership{{Group: group, JoinedOn: time.Now().AddDate(0, 0, -days)}},
	})
}

func (s *StepsContext) userHasReviewed(profileID, count, days int) error {
	ctx := context.Background()
	if count == 0 {
		return nil
	}
	// spread evenly inside the window, newest first
	step := time.Duration(days) * 24 * time.Hour / time.Duration(count+1)
	for i := 1; i <= count; i++ {
		err := s.store.PutReviewEvent(ctx, store.ReviewEvent{
			UserID:     profileID,
			ReviewedOn: time.Now().Add(-time.Duration(i) * step),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *StepsContext) userIsWithReputation(profileID int, name string, reputation int) error {
	s.directory[profileID] = chat.User{ProfileID: profileID, Name: name, Reputation: reputation}
	return nil
}

func (s *StepsContext) userAskedToJoin(profileID int, groupName string, requestID int) error {
	group, err := model.GroupString(groupName)
	if err != nil {
		return err
	}
	_, err = s.store.PutRequest(context.Background(), store.PermissionRequest{
		ID:               requestID,
		RequestingUserID: profileID,
		RequestedGroup:   group,
		CreatedOn:        time.Now().Add(-time.Hour),
	})
	return err
}

func (s *StepsContext) requestWasAlreadyResolved(requestID int, outcome string, reviewerID int) error {
	ctx := context.Background()
	accepted := outcome == "approved"
	return s.store.Transaction(ctx, func(tx store.Tx) error {
		return tx.ResolveRequest(ctx, requestID, reviewerID, accepted)
	})
}

// Chat steps

func (s *StepsContext) ensureServer() error {
	if s.instance != nil {
		return nil
	}
	instance, err := StartServer(s.store, s.thresholds, s.auditor)
	if err != nil {
		return err
	}
	s.instance = instance
	return nil
}

func (s *StepsContext) userSays(profileID int, content string) error {
	token, err := bridgeToken(webhookSecret, time.Minute)
	if err != nil {
		return err
	}
	return s.postMessage(profileID, content, "Bearer "+token)
}

func (s *StepsContext) usersSayAtTheSameTime(first, second int, content string) error {
	if err := s.ensureServer(); err != nil {
		return err
	}
	token, err := bridgeToken(webhookSecret, time.Minute)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, profileID := range []int{first, second} {
		wg.Add(1)
		go func(profileID int) {
			defer wg.Done()
			errs <- s.postMessage(profileID, content, "Bearer "+token)
		}(profileID)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *StepsContext) theThresholdsChangeToRequireReviews(required int) error {
	if err := s.ensureServer(); err != nil {
		return err
	}
	next := s.instance.Resolver.Engine().Thresholds()
	next.ReviewsRequired = required
	s.instance.Resolver.SetEngine(eligibility.New(next))
	return nil
}

func (s *StepsContext) postMessage(profileID int, content, authorization string) error {
	if err := s.ensureServer(); err != nil {
		return err
	}

	s.mu.Lock()
	s.nextMessageID++
	msgID := s.nextMessageID
	s.mu.Unlock()

	author, ok := s.directory[profileID]
	if !ok {
		author = chat.User{ProfileID: profileID, Name: fmt.Sprintf("user%d", profileID)}
	}
	users := make([]chat.User, 0, len(s.directory))
	for _, u := range s.directory {
		users = append(users, u)
	}

	payload, err := json.Marshal(endpoints.MessageRequest{
		Message: chat.Message{ID: msgID, Content: content, Author: author},
		Users:   users,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequest("POST", s.instance.ServerURL+"/rooms/41570/messages", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", authorization)

	resp, err := s.tc.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return err
	}

	result := botResponse{status: resp.StatusCode, body: body}
	if resp.StatusCode == http.StatusOK {
		var decoded endpoints.MessageResponse
		if err := json.Unmarshal(body, &decoded); err != nil {
			return fmt.Errorf("failed to decode bot response: %w", err)
		}
		for _, r := range decoded.Replies {
			result.replies = append(result.replies, stripReplyPrefix(r))
		}
	}

	s.mu.Lock()
	s.responses = append(s.responses, result)
	s.mu.Unlock()
	return nil
}

// stripReplyPrefix drops the ":<message id> " reply marker
func stripReplyPrefix(reply string) string {
	if strings.HasPrefix(reply, ":") {
		if i := strings.IndexByte(reply, ' '); i > 0 {
			return reply[i+1:]
		}
	}
	return reply
}

func (s *StepsContext) last() (botResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.responses) == 0 {
		return botResponse{}, errors.New("nothing was said yet")
	}
	return s.responses[len(s.responses)-1], nil
}

// Response steps

func (s *StepsContext) theResponseStatusShouldBe(expectedStatus int) error {
	resp, err := s.last()
	if err != nil {
		return err
	}
	if resp.status != expectedStatus {
		return fmt.Errorf("expected status %d, got %d: %s", expectedStatus, resp.status, string(resp.body))
	}
	return nil
}

func (s *StepsContext) theBotReplies(expected string) error {
	resp, err := s.last()
	if err != nil {
		return err
	}
	for _, r := range resp.replies {
		if strings.TrimSpace(r) == expected {
			return nil
		}
	}
	return fmt.Errorf("expected reply %q, got %q", expected, resp.replies)
}

func (s *StepsContext) theBotReplyContains(expected string) error {
	resp, err := s.last()
	if err != nil {
		return err
	}
	for _, r := range resp.replies {
		if strings.Contains(r, expected) {
			return nil
		}
	}
	return fmt.Errorf("expected a reply containing %q, got %q", expected, resp.replies)
}

func (s *StepsContext) theBotDoesNotReply() error {
	resp, err := s.last()
	if err != nil {
		return err
	}
	if resp.status != http.StatusOK {
		return fmt.Errorf("expected status 200, got %d: %s", resp.status, string(resp.body))
	}
	if len(resp.replies) != 0 {
		return fmt.Errorf("expected no reply, got %q", resp.replies)
	}
	return nil
}

func (s *StepsContext) oneReplyIsAndTheOtherIs(first, second string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.responses) < 2 {
		return fmt.Errorf("expected two responses, got %d", len(s.responses))
	}

	var got []string
	for _, resp := range s.responses[len(s.responses)-2:] {
		if len(resp.replies) != 1 {
			return fmt.Errorf("expected exactly one reply per message, got %q", resp.replies)
		}
		got = append(got, strings.TrimSpace(resp.replies[0]))
	}
	if (got[0] == first && got[1] == second) || (got[0] == second && got[1] == first) {
		return nil
	}
	return fmt.Errorf("expected replies %q and %q, got %q", first, second, got)
}

// State steps

func (s *StepsContext) findUser(profileID int) (*store.User, error) {
	return s.store.FindUserByProfileID(context.Background(), profileID)
}

func (s *StepsContext) userShouldBeInGroup(profileID int, groupName string) error {
	group, err := model.GroupString(groupName)
	if err != nil {
		return err
	}
	user, err := s.findUser(profileID)
	if err != nil {
		return err
	}
	if !user.InGroup(group) {
		return fmt.Errorf("user %d is in %v, not %s", profileID, user.Groups(), group)
	}
	return nil
}

func (s *StepsContext) userShouldNotBeInGroup(profileID int, groupName string) error {
	group, err := model.GroupString(groupName)
	if err != nil {
		return err
	}
	user, err := s.findUser(profileID)
	if err != nil {
		return err
	}
	if user.InGroup(group) {
		return fmt.Errorf("user %d should not be in %s", profileID, group)
	}
	return nil
}

func (s *StepsContext) userShouldBeOptedIn(profileID int) error {
	user, err := s.findUser(profileID)
	if err != nil {
		return err
	}
	if !user.OptInToReviewTracking || user.LastTrackingPreferenceChange == nil {
		return fmt.Errorf("user %d is not opted in to review tracking", profileID)
	}
	return nil
}

func (s *StepsContext) userShouldNotBeOptedIn(profileID int) error {
	user, err := s.findUser(profileID)
	if err != nil {
		return err
	}
	if user.OptInToReviewTracking {
		return fmt.Errorf("user %d should not be opted in to review tracking", profileID)
	}
	return nil
}

func (s *StepsContext) requestShouldBe(requestID int, state string) error {
	req, err := s.store.FindRequestByID(context.Background(), requestID)
	if err != nil {
		return err
	}
	var got string
	switch {
	case req.Accepted == nil:
		got = "pending"
	case *req.Accepted:
		got = "approved"
	default:
		got = "rejected"
	}
	if got != state {
		return fmt.Errorf("request %d is %s, expected %s", requestID, got, state)
	}
	return nil
}

func (s *StepsContext) requestShouldHaveBeenHandledBy(requestID, reviewerID int) error {
	req, err := s.store.FindRequestByID(context.Background(), requestID)
	if err != nil {
		return err
	}
	if req.ReviewingUserID == nil || *req.ReviewingUserID != reviewerID {
		return fmt.Errorf("request %d was handled by %v, expected %d", requestID, req.ReviewingUserID, reviewerID)
	}
	return nil
}

func (s *StepsContext) anAuditEventShouldBeRecorded(msgID string) error {
	for _, e := range s.auditor.all() {
		if e.MessageID() == msgID {
			return nil
		}
	}
	return fmt.Errorf("no %q audit event was recorded", msgID)
}
