// Package gorm provides the GORM-based implementation of the store
// interfaces defined in the parent store package.
//
// Queries are written as raw SQL against the schema in db/migrations.
// Inside a transaction the permission request row is read with
// SELECT ... FOR UPDATE, and resolving it is a conditional UPDATE that only
// matches while accepted IS NULL, so concurrent resolutions of the same
// request serialize on the row and only the first one commits.
package gorm
