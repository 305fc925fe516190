// Package domain defines the core domain types and interfaces.
//
// Concept-oriented files (maker.go, launch.go, choice.go, etc.) hold the shared types
// and the repository contracts the application layer consumes. No implementation code.
// Keeping the interfaces here lets adapters depend on domain without import cycles.
package domain
