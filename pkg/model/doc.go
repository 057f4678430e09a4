// Package model defines the database models for the chatbot.
//
// This package contains GORM models that map to the chatbot's PostgreSQL
// schema (see db/migrations).
//
// # Core Models
//
//   - User: a chat profile known to the bot
//   - UserPermission: a user's membership in a permission group
//   - PermissionRequest: a request to join a permission group
//   - ReviewedItem: a logged review, used as an activity signal
//
// # Database Schema
//
//   - users: chat profiles and review tracking preferences
//   - user_permissions: group memberships, unique per (user, group)
//   - permission_requests: requests and their resolution
//   - reviewed_items: review activity log
package model
