package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/socvr/chatbot-go/pkg/model"
)

// Seeder is implemented by stores that can be bootstrapped with data
type Seeder interface {
	PutUser(ctx context.Context, u User) error
	// PutRequest stores r. An ID of 0 lets the backend assign one.
	PutRequest(ctx context.Context, r PermissionRequest) (int, error)
	PutReviewEvent(ctx context.Context, e ReviewEvent) error
}

// Fixture is the YAML document accepted by LoadFixture
type Fixture struct {
	Users    []FixtureUser    `yaml:"users"`
	Requests []FixtureRequest `yaml:"requests"`
}

type FixtureUser struct {
	ProfileID   int                 `yaml:"profile_id"`
	OptIn       bool                `yaml:"opt_in_to_review_tracking"`
	Memberships []FixtureMembership `yaml:"memberships"`
	Reviews     []time.Time         `yaml:"reviews"`
}

type FixtureMembership struct {
	Group    model.Group `yaml:"group"`
	JoinedOn time.Time   `yaml:"joined_on"`
}

type FixtureRequest struct {
	ID               int         `yaml:"id"`
	RequestingUserID int         `yaml:"requesting_user_id"`
	Group            model.Group `yaml:"group"`
	Accepted         *bool       `yaml:"accepted"`
	ReviewingUserID  *int        `yaml:"reviewing_user_id"`
	CreatedOn        time.Time   `yaml:"created_on"`
}

// LoadFixture decodes a YAML fixture from r and applies it to s
func LoadFixture(ctx context.Context, s Seeder, r io.Reader) error {
	var f Fixture
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("failed to decode fixture: %w", err)
	}
	return ApplyFixture(ctx, s, f)
}

// ApplyFixture stores users before requests so that requesters exist
func ApplyFixture(ctx context.Context, s Seeder, f Fixture) error {
	for _, fu := range f.Users {
		u := User{ProfileID: fu.ProfileID, OptInToReviewTracking: fu.OptIn}
		for _, fm := range fu.Memberships {
			u.Memberships = append(u.Memberships, Membership{
				UserID:   fu.ProfileID,
				Group:    fm.Group,
				JoinedOn: fm.JoinedOn,
			})
		}
		if err := s.PutUser(ctx, u); err != nil {
			return fmt.Errorf("failed to seed user %d: %w", fu.ProfileID, err)
		}
		for _, at := range fu.Reviews {
			if err := s.PutReviewEvent(ctx, ReviewEvent{UserID: fu.ProfileID, ReviewedOn: at}); err != nil {
				return fmt.Errorf("failed to seed review for user %d: %w", fu.ProfileID, err)
			}
		}
	}

	for _, fr := range f.Requests {
		created := fr.CreatedOn
		if created.IsZero() {
			created = time.Now().UTC()
		}
		_, err := s.PutRequest(ctx, PermissionRequest{
			ID:               fr.ID,
			RequestingUserID: fr.RequestingUserID,
			RequestedGroup:   fr.Group,
			ReviewingUserID:  fr.ReviewingUserID,
			Accepted:         fr.Accepted,
			CreatedOn:        created,
		})
		if err != nil {
			return fmt.Errorf("failed to seed request %d: %w", fr.ID, err)
		}
	}
	return nil
}
