package image

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const (
	markerPrefix   = ".build-hash-"
	markerFileMode = 0o644
)

// treeHashes carries the two content hashes the build cache keys on.
type treeHashes struct {
	source     string
	dockerfile string
}

// computeHashes hashes the Dockerfile and every other file in the build
// context. File paths participate in the source hash so renames invalidate it.
func (b *Builder) computeHashes() (treeHashes, error) {
	dockerfile, err := afero.ReadFile(b.fs, filepath.Join(b.workdir, dockerfileName))
	if err != nil {
		if os.IsNotExist(err) {
			return treeHashes{}, fmt.Errorf("%w in %s", ErrDockerfileNotFound, b.workdir)
		}

		return treeHashes{}, fmt.Errorf("failed to read dockerfile: %w", err)
	}

	digest := sha256.New()

	err = b.walkSourceFiles(func(rel string, _ os.FileInfo) error {
		if rel == dockerfileName {
			return nil
		}

		file, err := b.fs.Open(filepath.Join(b.workdir, filepath.FromSlash(rel)))
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", rel, err)
		}

		defer func() { _ = file.Close() }()

		_, _ = digest.Write([]byte(rel))
		_, _ = digest.Write([]byte{0})

		_, err = io.Copy(digest, file)
		if err != nil {
			return fmt.Errorf("failed to hash %s: %w", rel, err)
		}

		_, _ = digest.Write([]byte{0})

		return nil
	})
	if err != nil {
		return treeHashes{}, err
	}

	return treeHashes{
		source:     hex.EncodeToString(digest.Sum(nil)),
		dockerfile: fmt.Sprintf("%x", sha256.Sum256(dockerfile)),
	}, nil
}

// readMarkers returns the hashes recorded for the tag, empty when absent.
func (b *Builder) readMarkers(tag string) treeHashes {
	return treeHashes{
		source:     b.readMarker("source", tag),
		dockerfile: b.readMarker("dockerfile", tag),
	}
}

func (b *Builder) readMarker(kind, tag string) string {
	raw, err := afero.ReadFile(b.fs, b.markerPath(kind, tag))
	if err != nil {
		return ""
	}

	return strings.TrimSpace(string(raw))
}

func (b *Builder) writeMarkers(tag string, hashes treeHashes) error {
	err := afero.WriteFile(
		b.fs,
		b.markerPath("source", tag),
		[]byte(hashes.source+"\n"),
		markerFileMode,
	)
	if err != nil {
		return fmt.Errorf("failed to write source hash marker: %w", err)
	}

	err = afero.WriteFile(
		b.fs,
		b.markerPath("dockerfile", tag),
		[]byte(hashes.dockerfile+"\n"),
		markerFileMode,
	)
	if err != nil {
		return fmt.Errorf("failed to write dockerfile hash marker: %w", err)
	}

	return nil
}

func (b *Builder) markerPath(kind, tag string) string {
	return filepath.Join(b.workdir, markerPrefix+kind+"-"+tag)
}

// RemoveMarkers deletes every build-hash marker in the directory, across all
// tags, forcing the next build to run. It reports how many were removed.
func RemoveMarkers(fsys afero.Fs, workdir string) (int, error) {
	matches, err := afero.Glob(fsys, filepath.Join(workdir, markerPrefix+"*"))
	if err != nil {
		return 0, fmt.Errorf("failed to list build markers: %w", err)
	}

	for _, match := range matches {
		err = fsys.Remove(match)
		if err != nil {
			return 0, fmt.Errorf("failed to remove build marker '%s': %w", match, err)
		}
	}

	return len(matches), nil
}
