// Package resolution implements the one-way transition of a permission
// request from unresolved to approved or rejected.
//
// A Resolver looks the request up, checks that it is still unresolved,
// that the actor belongs to the requested group and that the eligibility
// rules for the group hold, then records the decision and, on approval,
// grants the membership. The checks are first run against a snapshot so
// that slow lookups (the requester's reputation comes from the chat
// transport) happen outside the transaction, and are then repeated inside
// it, so the decision is made on locked, current data.
//
// Business outcomes that the author should be told about are returned as
// *Failure values; any other error comes from infrastructure and leaves no
// partial state behind.
package resolution
