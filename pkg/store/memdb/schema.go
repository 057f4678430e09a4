package memdb

import (
	"time"

	"github.com/hashicorp/go-memdb"
)

const (
	tableUsers       = "users"
	tableMemberships = "memberships"
	tableRequests    = "requests"
	tableReviews     = "reviews"

	indexID       = "id"
	indexUser     = "user"
	indexPending  = "pending"
	indexReviewer = "reviewer"
)

type userRecord struct {
	ProfileID                    int
	OptInToReviewTracking        bool
	LastTrackingPreferenceChange *time.Time
}

type membershipRecord struct {
	UserID   int
	Group    string
	JoinedOn time.Time
}

type requestRecord struct {
	ID               int
	RequestingUserID int
	Group            string
	ReviewingUserID  *int
	Accepted         *bool
	CreatedOn        time.Time
}

type reviewRecord struct {
	ID         int
	ReviewerID int
	ReviewedOn time.Time
}

func schema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			tableUsers: {
				Name: tableUsers,
				Indexes: map[string]*memdb.IndexSchema{
					indexID: {
						Name:    indexID,
						Unique:  true,
						Indexer: &memdb.IntFieldIndex{Field: "ProfileID"},
					},
				},
			},
			tableMemberships: {
				Name: tableMemberships,
				Indexes: map[string]*memdb.IndexSchema{
					indexID: {
						Name:   indexID,
						Unique: true,
						Indexer: &memdb.CompoundIndex{
							Indexes: []memdb.Indexer{
								&memdb.IntFieldIndex{Field: "UserID"},
								&memdb.StringFieldIndex{Field: "Group"},
							},
						},
					},
					indexUser: {
						Name:    indexUser,
						Indexer: &memdb.IntFieldIndex{Field: "UserID"},
					},
				},
			},
			tableRequests: {
				Name: tableRequests,
				Indexes: map[string]*memdb.IndexSchema{
					indexID: {
						Name:    indexID,
						Unique:  true,
						Indexer: &memdb.IntFieldIndex{Field: "ID"},
					},
					indexPending: {
						Name: indexPending,
						Indexer: &memdb.ConditionalIndex{
							Conditional: func(obj interface{}) (bool, error) {
								return obj.(*requestRecord).Accepted == nil, nil
							},
						},
					},
				},
			},
			tableReviews: {
				Name: tableReviews,
				Indexes: map[string]*memdb.IndexSchema{
					indexID: {
						Name:    indexID,
						Unique:  true,
						Indexer: &memdb.IntFieldIndex{Field: "ID"},
					},
					indexReviewer: {
						Name:    indexReviewer,
						Indexer: &memdb.IntFieldIndex{Field: "ReviewerID"},
					},
				},
			},
		},
	}
}
