package image

import (
	"archive/tar"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/docker/docker/api/types/build"
	imagetypes "github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/registry"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/jsonmessage"
	"github.com/spf13/afero"

	"github.com/eip-monitor/eipmon/pkg/client/netretry"
	"github.com/eip-monitor/eipmon/pkg/utils/notify"
)

const (
	dockerfileName = "Dockerfile"

	pushMaxRetries    = 3
	pushRetryBaseWait = 2 * time.Second
	pushRetryMaxWait  = 15 * time.Second
)

// EngineAPI is the subset of the Docker Engine API the builder uses.
type EngineAPI interface {
	ImageBuild(
		ctx context.Context,
		buildContext io.Reader,
		options build.ImageBuildOptions,
	) (build.ImageBuildResponse, error)
	ImagePush(
		ctx context.Context,
		ref string,
		options imagetypes.PushOptions,
	) (io.ReadCloser, error)
}

var _ EngineAPI = (client.APIClient)(nil)

// Options configures a build or push.
type Options struct {
	// ImageRef is the full image reference (registry/name:tag).
	ImageRef string
	// Tag names the build-hash marker files.
	Tag string
	// RegistryAuth is a pre-encoded X-Registry-Auth header for pushes.
	// Empty pushes anonymously.
	RegistryAuth string
	// Verbose streams the daemon's build and push output.
	Verbose bool
}

// Builder builds and pushes the container image, caching by content hash.
type Builder struct {
	engine  EngineAPI
	fs      afero.Fs
	workdir string
	out     io.Writer
}

// NewBuilder creates a builder for the given build context directory.
func NewBuilder(engine EngineAPI, fsys afero.Fs, workdir string, out io.Writer) *Builder {
	return &Builder{
		engine:  engine,
		fs:      fsys,
		workdir: workdir,
		out:     out,
	}
}

// Build builds the image unless the source tree and Dockerfile are unchanged
// since the last build for this tag. It reports whether a build ran.
func (b *Builder) Build(ctx context.Context, opts Options) (bool, error) {
	hashes, err := b.computeHashes()
	if err != nil {
		return false, err
	}

	previous := b.readMarkers(opts.Tag)
	if hashes == previous {
		notify.Infof(b.out, "image '%s' unchanged since last build, skipping", opts.ImageRef)

		return false, nil
	}

	noCache := previous.dockerfile != "" && previous.dockerfile != hashes.dockerfile
	if noCache {
		notify.Activityf(b.out, "dockerfile changed, building without layer cache")
	}

	buildContext, err := b.tarBuildContext()
	if err != nil {
		return false, err
	}

	notify.Activityf(b.out, "building image '%s'", opts.ImageRef)

	resp, err := b.engine.ImageBuild(ctx, buildContext, build.ImageBuildOptions{
		Tags:       []string{opts.ImageRef},
		Dockerfile: dockerfileName,
		NoCache:    noCache,
		Remove:     true,
	})
	if err != nil {
		return false, fmt.Errorf("failed to build image '%s': %w", opts.ImageRef, err)
	}

	defer func() { _ = resp.Body.Close() }()

	err = b.drainStream(resp.Body, opts.Verbose)
	if err != nil {
		return false, fmt.Errorf("failed to build image '%s': %w", opts.ImageRef, err)
	}

	err = b.writeMarkers(opts.Tag, hashes)
	if err != nil {
		return false, err
	}

	notify.Successf(b.out, "built image '%s'", opts.ImageRef)

	return true, nil
}

// Push builds the image if needed, then pushes it to the registry. Transient
// registry failures (5xx responses, connection resets) are retried with
// exponential backoff.
func (b *Builder) Push(ctx context.Context, opts Options) error {
	_, err := b.Build(ctx, opts)
	if err != nil {
		return err
	}

	auth := opts.RegistryAuth
	if auth == "" {
		auth, err = registry.EncodeAuthConfig(registry.AuthConfig{})
		if err != nil {
			return fmt.Errorf("failed to encode registry auth: %w", err)
		}
	}

	notify.Activityf(b.out, "pushing image '%s'", opts.ImageRef)

	var lastErr error

	for attempt := 1; attempt <= pushMaxRetries; attempt++ {
		lastErr = b.pushOnce(ctx, opts, auth)
		if lastErr == nil {
			notify.Successf(b.out, "pushed image '%s'", opts.ImageRef)

			return nil
		}

		if !netretry.IsRetryable(lastErr) || attempt == pushMaxRetries {
			break
		}

		notify.Warningf(b.out, "push attempt %d failed, retrying: %v", attempt, lastErr)

		delay := netretry.ExponentialDelay(attempt, pushRetryBaseWait, pushRetryMaxWait)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			if !timer.Stop() {
				<-timer.C
			}

			return fmt.Errorf("push retry cancelled: %w", ctx.Err())
		case <-timer.C:
		}
	}

	return fmt.Errorf("failed to push image '%s': %w", opts.ImageRef, lastErr)
}

// pushOnce performs a single push attempt and drains the daemon stream so
// registry-side errors surface as the attempt's error.
func (b *Builder) pushOnce(ctx context.Context, opts Options, auth string) error {
	reader, err := b.engine.ImagePush(ctx, opts.ImageRef, imagetypes.PushOptions{
		RegistryAuth: auth,
	})
	if err != nil {
		return err
	}

	defer func() { _ = reader.Close() }()

	return b.drainStream(reader, opts.Verbose)
}

// --- internals ---

// drainStream consumes a daemon JSON message stream, surfacing errors
// embedded in it. The stream is rendered only in verbose mode.
func (b *Builder) drainStream(stream io.Reader, verbose bool) error {
	out := io.Discard
	if verbose {
		out = b.out
	}

	err := jsonmessage.DisplayJSONMessagesStream(stream, out, 0, false, nil)
	if err != nil {
		return fmt.Errorf("daemon error: %w", err)
	}

	return nil
}

// tarBuildContext packs the build context into an uncompressed tar stream
// for the daemon.
func (b *Builder) tarBuildContext() (io.Reader, error) {
	var buf bytes.Buffer

	writer := tar.NewWriter(&buf)

	err := b.walkSourceFiles(func(rel string, info os.FileInfo) error {
		header := &tar.Header{
			Name:    rel,
			Mode:    int64(info.Mode().Perm()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		}

		err := writer.WriteHeader(header)
		if err != nil {
			return fmt.Errorf("failed to write tar header for %s: %w", rel, err)
		}

		file, err := b.fs.Open(filepath.Join(b.workdir, filepath.FromSlash(rel)))
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", rel, err)
		}

		defer func() { _ = file.Close() }()

		_, err = io.Copy(writer, file)
		if err != nil {
			return fmt.Errorf("failed to tar %s: %w", rel, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	err = writer.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to finalize build context: %w", err)
	}

	return &buf, nil
}

// walkSourceFiles visits every regular file in the build context in lexical
// order, skipping VCS metadata and the build-hash markers.
func (b *Builder) walkSourceFiles(visit func(rel string, info os.FileInfo) error) error {
	err := afero.Walk(b.fs, b.workdir, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if info.IsDir() {
			if info.Name() == ".git" {
				return filepath.SkipDir
			}

			return nil
		}

		if !info.Mode().IsRegular() || strings.HasPrefix(info.Name(), markerPrefix) {
			return nil
		}

		rel, err := filepath.Rel(b.workdir, path)
		if err != nil {
			return fmt.Errorf("failed to resolve path %s: %w", path, err)
		}

		return visit(filepath.ToSlash(rel), info)
	})
	if err != nil {
		return fmt.Errorf("failed to walk build context: %w", err)
	}

	return nil
}
