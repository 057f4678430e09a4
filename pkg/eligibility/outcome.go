package eligibility

//go:generate go run github.com/dmarkham/enumer -type Outcome -trimprefix Outcome -output outcome.gen.go
//go:generate go run github.com/dmarkham/enumer -type Reason -trimprefix Reason -transform lower-camel -output reason.gen.go

// Outcome is the decision an actor takes on a request
type Outcome int

const (
	OutcomeApprove Outcome = iota
	OutcomeReject
)

// Reason identifies the rule an actor failed
type Reason int

const (
	ReasonReputation Reason = iota
	ReasonReviewVolume
	ReasonTenure
	ReasonPrerequisiteGroup
)
