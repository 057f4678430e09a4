// Package command routes chat messages to command actions.
//
// A Command is a plain value: a name, usage text, a pattern that must match
// the whole message, an optional group the author has to belong to, and an
// Action. A Dispatcher holds an ordered, immutable list of commands and runs
// the first one whose pattern matches.
//
//	d, err := command.NewDispatcher(store, command.Builtins(deps))
//	handled, err := d.Dispatch(ctx, msg, room)
//
// Actions report user-facing outcomes by posting to the room and return an
// error only for infrastructure failures, which Dispatch passes through.
package command
