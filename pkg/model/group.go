package model

//go:generate go run github.com/dmarkham/enumer -type Group -trimprefix Group -json -yaml -sql -output group.gen.go

// Group is a permission group a user can hold membership in.
// The set is closed; groups are never created at runtime.
type Group int

const (
	GroupReviewer Group = iota
	GroupBotOwner
)

// GroupPtr returns a pointer to g, for optional group fields.
func GroupPtr(g Group) *Group {
	return &g
}
