// Package cli provides reusable helpers for command wiring and execution.
//
// This package is organized into subpackages for different functionality:
//
//   - cli/cmd: The cobra command tree for the eipmon binary
//   - cli/errorhandler: Command execution with normalized error capture
//   - cli/parallel: Parallel task execution with controlled concurrency
//
// The utilities in this package follow dependency injection patterns and
// integrate with the eipmon runtime container for testability.
package cli
