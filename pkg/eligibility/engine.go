package eligibility

import (
	"fmt"
	"time"

	"github.com/socvr/chatbot-go/pkg/model"
)

const day = 24 * time.Hour

// Thresholds parameterizes the rules
type Thresholds struct {
	ReputationToJoinReviewers int
	ReviewWindowDays          int
	ReviewsRequired           int
	MinReviewerTenureDays     int
}

// NotMetError reports the first rule an actor failed
type NotMetError struct {
	Reason     Reason
	Thresholds Thresholds
}

func (e *NotMetError) Error() string {
	t := e.Thresholds
	switch e.Reason {
	case ReasonReputation:
		return fmt.Sprintf("The target user needs at least %d rep to join the Reviewer group.", t.ReputationToJoinReviewers)
	case ReasonReviewVolume:
		return fmt.Sprintf("You need to have logged %d reviews in the last %d days before you can process requests for this group.", t.ReviewsRequired, t.ReviewWindowDays)
	case ReasonTenure:
		return fmt.Sprintf("You need to be in the Reviewer group for at least %d days before you can process requests for this group.", t.MinReviewerTenureDays)
	case ReasonPrerequisiteGroup:
		return "The target user needs to be in the Reviewer group before they can join the BotOwner group."
	default:
		return fmt.Sprintf("eligibility not met: %s", e.Reason)
	}
}

// Input is everything the rules look at
type Input struct {
	Group   model.Group
	Outcome Outcome

	// RequesterReputation is only read when NeedsRequesterReputation is true
	RequesterReputation int
	RequesterGroups     []model.Group

	// ActorMemberships maps each group the actor holds to its join time
	ActorMemberships map[model.Group]time.Time
	ActorReviews     []time.Time

	Now time.Time
}

// Engine evaluates the rules against fixed thresholds
type Engine struct {
	thresholds Thresholds
}

// New creates an Engine
func New(t Thresholds) *Engine {
	return &Engine{thresholds: t}
}

// Thresholds returns the thresholds the engine was built with
func (e *Engine) Thresholds() Thresholds {
	return e.thresholds
}

// NeedsRequesterReputation reports whether Check reads RequesterReputation
func (e *Engine) NeedsRequesterReputation(group model.Group, outcome Outcome) bool {
	return group == model.GroupReviewer && outcome == OutcomeApprove
}

// ReviewWindowStart is the oldest instant whose reviews can still count
func (e *Engine) ReviewWindowStart(now time.Time) time.Time {
	return now.Add(-time.Duration(e.thresholds.ReviewWindowDays) * day)
}

// Check returns nil when the actor may take in.Outcome on a request for
// in.Group, or a *NotMetError for the first failed rule.
func (e *Engine) Check(in Input) error {
	switch in.Group {
	case model.GroupReviewer:
		return e.checkReviewer(in)
	case model.GroupBotOwner:
		return e.checkBotOwner(in)
	default:
		return nil
	}
}

func (e *Engine) checkReviewer(in Input) error {
	t := e.thresholds

	if in.Outcome == OutcomeApprove && in.RequesterReputation < t.ReputationToJoinReviewers {
		return e.notMet(ReasonReputation)
	}

	if CountRecentReviews(in.ActorReviews, in.Now, t.ReviewWindowDays) < t.ReviewsRequired {
		return e.notMet(ReasonReviewVolume)
	}

	joined, ok := in.ActorMemberships[model.GroupReviewer]
	if !ok || daysBetween(joined, in.Now) < float64(t.MinReviewerTenureDays) {
		return e.notMet(ReasonTenure)
	}
	return nil
}

func (e *Engine) checkBotOwner(in Input) error {
	if in.Outcome != OutcomeApprove {
		return nil
	}
	for _, g := range in.RequesterGroups {
		if g == model.GroupReviewer {
			return nil
		}
	}
	return e.notMet(ReasonPrerequisiteGroup)
}

func (e *Engine) notMet(r Reason) error {
	return &NotMetError{Reason: r, Thresholds: e.thresholds}
}

// CountRecentReviews counts reviews strictly younger than windowDays
func CountRecentReviews(reviews []time.Time, now time.Time, windowDays int) int {
	n := 0
	for _, at := range reviews {
		if daysBetween(at, now) < float64(windowDays) {
			n++
		}
	}
	return n
}

func daysBetween(from, to time.Time) float64 {
	return to.Sub(from).Hours() / 24
}
