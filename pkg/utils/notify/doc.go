// Package notify provides utilities for sending formatted notifications to CLI users.
//
// This package includes:
//   - [WriteMessage] for displaying formatted messages with type-specific symbols and colors
//   - [StageSeparatingWriter] for automatic blank line insertion between CLI stages
//   - [DeferredNewlineWriter] for capturing subprocess output without trailing blank lines
//
// Message types include success (✔), error (✗), warning (⚠), info (ℹ), activity (►),
// generate (✚), hint (↳), and title messages with customizable emojis. Hints follow
// warnings that need operator action, such as permission failures on cluster-scoped
// resources.
//
// The [StageSeparatingWriter] wraps an io.Writer and automatically detects stage titles
// (lines starting with emojis) to insert visual separation between workflow stages.
package notify
