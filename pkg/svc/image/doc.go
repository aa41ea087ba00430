// Package image builds and pushes the EIP Monitor container image through the
// Docker Engine API.
//
// Builds are cached by content: a SHA-256 over the source tree and another
// over the Dockerfile are compared against per-tag marker files
// (.build-hash-source-<tag>, .build-hash-dockerfile-<tag>). An unchanged tree
// skips the build entirely; a changed Dockerfile invalidates the daemon's
// layer cache with a no-cache build; a source-only change builds normally.
//
// All operations use the Docker SDK and do not shell out to a container CLI.
package image

import "errors"

// ErrDockerfileNotFound is returned when the build context has no Dockerfile.
var ErrDockerfileNotFound = errors.New("dockerfile not found")
