// Package eligibility decides whether an actor may resolve a permission
// request for a group.
//
// The rules are pure: an Engine is built from Thresholds and every check
// works on an Input assembled by the caller, so nothing here touches
// persistence or the chat transport.
//
// Reviewer requests:
//
//   - approving requires the requester to have at least
//     ReputationToJoinReviewers reputation
//   - the actor must have logged at least ReviewsRequired reviews younger
//     than ReviewWindowDays
//   - the actor must have been a Reviewer for at least MinReviewerTenureDays
//
// BotOwner requests: approving requires the requester to already be a
// Reviewer. Rejections of BotOwner requests are unrestricted.
package eligibility
