// Package audit provides audit logging for permission workflow operations.
//
// Every resolution attempt on a permission request and every command denied
// for lack of group membership is recorded as an RFC5424 syslog line and,
// when an audit database is configured, persisted to its messages table.
//
// # Event Types
//
//   - ResolveEvent: an approve or reject attempt, successful or not
//   - CommandDeniedEvent: a command suppressed by its required group
//
// # Usage
//
//	auditor := audit.New(audit.NewLogger(), store, logger)
//	auditor.Log(audit.ResolveEvent{ActorID: 12, RequestID: 7, ...})
//
// Components receive an Auditor at construction; there is no package-level
// default.
package audit
