// Package app provides the application service layer.
//
// Orchestrates use cases: maker login and profiles, products and pins, launch
// submission, toggles (upvotes, pledges, reactions, follows), stories, the cached wall
// reads, and payment grants. Sits between HTTP handlers and domain repositories.
// Depends on domain interfaces, not concrete implementations.
package app
