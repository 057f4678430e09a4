// Package store provides storage abstractions for the chatbot.
//
// This package defines the narrow persistence interface consumed by the
// request resolution workflow and the chat commands, decoupling them from the
// database implementation. Two backends implement it:
//
//   - pkg/store/gorm: PostgreSQL through GORM
//   - pkg/store/memdb: in-memory, transactional, backed by go-memdb
//
// # Units of Work
//
// All mutation happens inside Store.Transaction. The callback receives a Tx;
// returning nil commits, returning an error rolls back:
//
//	err := s.Transaction(ctx, func(tx store.Tx) error {
//	    if err := tx.ResolveRequest(ctx, id, reviewer, true); err != nil {
//	        return err
//	    }
//	    return tx.AddMembership(ctx, store.Membership{...})
//	})
//
// ResolveRequest is a conditional write: it fails with ErrAlreadyResolved when
// the request was resolved by someone else first.
package store
