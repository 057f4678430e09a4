package store

import (
	"context"
	"errors"
	"time"

	"github.com/socvr/chatbot-go/pkg/model"
)

var (
	// ErrRequestNotFound is returned when no permission request has the given id
	ErrRequestNotFound = errors.New("permission request not found")
	// ErrUserNotFound is returned when no user has the given profile id
	ErrUserNotFound = errors.New("user not found")
	// ErrAlreadyResolved is returned when resolving a request that already has a decision
	ErrAlreadyResolved = errors.New("permission request already resolved")
)

// User is a chat user known to the store
type User struct {
	ProfileID                    int
	OptInToReviewTracking        bool
	LastTrackingPreferenceChange *time.Time
	Memberships                  []Membership
}

// Membership returns the user's membership of group, if any
func (u User) Membership(group model.Group) (Membership, bool) {
	for _, m := range u.Memberships {
		if m.Group == group {
			return m, true
		}
	}
	return Membership{}, false
}

// InGroup reports whether the user holds group
func (u User) InGroup(group model.Group) bool {
	_, ok := u.Membership(group)
	return ok
}

// Groups lists the groups the user holds
func (u User) Groups() []model.Group {
	groups := make([]model.Group, 0, len(u.Memberships))
	for _, m := range u.Memberships {
		groups = append(groups, m.Group)
	}
	return groups
}

// Membership records that a user joined a permission group
type Membership struct {
	UserID   int
	Group    model.Group
	JoinedOn time.Time
}

// PermissionRequest is a user's request to join a permission group
type PermissionRequest struct {
	ID               int
	RequestingUserID int
	RequestingUser   User
	RequestedGroup   model.Group
	ReviewingUserID  *int
	Accepted         *bool
	CreatedOn        time.Time
}

// Resolved reports whether a decision has been recorded
func (r PermissionRequest) Resolved() bool {
	return r.Accepted != nil
}

// ReviewEvent is a single logged review by a user
type ReviewEvent struct {
	UserID     int
	ReviewedOn time.Time
}

// Reader is the read side of the store
type Reader interface {
	FindUserByProfileID(ctx context.Context, profileID int) (*User, error)
	FindRequestByID(ctx context.Context, id int) (*PermissionRequest, error)
	ListMembershipsOf(ctx context.Context, profileID int) ([]Membership, error)
	// ListReviewEventsOf returns the reviews logged strictly after since
	ListReviewEventsOf(ctx context.Context, profileID int, since time.Time) ([]ReviewEvent, error)
	ListPendingRequests(ctx context.Context) ([]PermissionRequest, error)
}

// Tx is a unit of work. Nothing written through it is visible to other
// readers until the enclosing Transaction returns nil.
type Tx interface {
	Reader

	// ResolveRequest records the decision on a pending request. It returns
	// ErrAlreadyResolved if the request already has one.
	ResolveRequest(ctx context.Context, id, reviewingUserID int, accepted bool) error
	// AddMembership grants a membership. Granting one that exists is a no-op.
	AddMembership(ctx context.Context, m Membership) error
	SetReviewTracking(ctx context.Context, profileID int, optIn bool, changedAt time.Time) error
}

// Store is the persistence interface consumed by the request workflow
type Store interface {
	Reader

	// Transaction runs fn in a unit of work that commits if fn returns nil
	// and rolls back otherwise.
	Transaction(ctx context.Context, fn func(Tx) error) error
	Ping(ctx context.Context) error
}
