// Package imitator writes placeholder copies of source images: same pixel
// dimensions, none of the content.
package imitator

import (
	"context"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/abaddouh/fakeimg/internal/errors"
	"github.com/abaddouh/fakeimg/internal/probe"
	"github.com/abaddouh/fakeimg/internal/synth"
)

// Stage is the last step an item reached.
type Stage int

const (
	Pending Stage = iota
	Probed
	Synthesized
	Written
)

func (s Stage) String() string {
	switch s {
	case Probed:
		return "probed"
	case Synthesized:
		return "synthesized"
	case Written:
		return "written"
	default:
		return "pending"
	}
}

// Result is the outcome for one source entry. Err is nil on success.
type Result struct {
	Source string
	Dest   string
	Stage  Stage
	Err    error
}

func (r Result) OK() bool {
	return r.Err == nil
}

// IdentityFunc returns a fresh output file stem.
type IdentityFunc func() string

// ProbeFunc measures a source image.
type ProbeFunc func(path string) (probe.Dimensions, error)

const outputExt = ".jpg"

type Imitator struct {
	strategy synth.Strategy
	probe    ProbeFunc
	identity IdentityFunc
	logger   *slog.Logger
}

type Option func(*Imitator)

func WithIdentity(fn IdentityFunc) Option {
	return func(im *Imitator) { im.identity = fn }
}

func WithProbe(fn ProbeFunc) Option {
	return func(im *Imitator) { im.probe = fn }
}

func WithLogger(logger *slog.Logger) Option {
	return func(im *Imitator) { im.logger = logger }
}

func New(strategy synth.Strategy, opts ...Option) *Imitator {
	im := &Imitator{
		strategy: strategy,
		probe:    probe.Probe,
		identity: uuid.NewString,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Imitate writes one placeholder for src into destDir and returns its path.
func (im *Imitator) Imitate(ctx context.Context, src, destDir string) (string, error) {
	res := im.imitate(ctx, src, destDir)
	return res.Dest, res.Err
}

func (im *Imitator) imitate(ctx context.Context, src, destDir string) Result {
	res := im.process(ctx, src, destDir)
	if res.Err != nil {
		im.logger.Warn("imitation failed", "source", src, "stage", res.Stage.String(), "error", res.Err)
	} else {
		im.logger.Info("imitation done", "source", src, "dest", res.Dest)
	}
	return res
}

func (im *Imitator) process(ctx context.Context, src, destDir string) Result {
	res := Result{Source: src, Stage: Pending}

	dims, err := im.probe(src)
	if err != nil {
		res.Err = err
		return res
	}
	res.Stage = Probed
	im.logger.Debug("probed source", "source", src, "width", dims.Width, "height", dims.Height)

	data, err := im.strategy.Synthesize(ctx, dims.Width, dims.Height)
	if err != nil {
		res.Err = err
		return res
	}
	res.Stage = Synthesized

	dest := filepath.Join(destDir, im.identity()+outputExt)
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		res.Err = errors.Wrap(errors.KindWrite, "write", dest, "write placeholder", err)
		return res
	}
	res.Stage = Written
	res.Dest = dest

	return res
}

// ImitateAll imitates every immediate entry of srcDir. A failing entry is
// recorded in its Result and does not stop the others. The returned error is
// non-nil only when srcDir cannot be listed or ctx is cancelled; results
// gathered so far are returned with it.
func (im *Imitator) ImitateAll(ctx context.Context, srcDir, destDir string) ([]Result, error) {
	var results []Result

	for entry, err := range Entries(srcDir) {
		if err != nil {
			return results, err
		}
		if err := ctx.Err(); err != nil {
			return results, err
		}

		src := filepath.Join(srcDir, entry.Name())
		if entry.IsDir() {
			res := Result{
				Source: src,
				Err:    errors.New(errors.KindInvalidInputEntry, "imitate all", src, "is a directory"),
			}
			im.logger.Warn("skipping entry", "source", src, "error", res.Err)
			results = append(results, res)
			continue
		}

		results = append(results, im.imitate(ctx, src, destDir))
	}

	return results, nil
}

// Run checks src and dest, then imitates src as a single file or as a
// directory of files. Path problems are returned before any output is
// written.
func (im *Imitator) Run(ctx context.Context, src, dest string) ([]Result, error) {
	srcInfo, err := CheckPaths(src, dest)
	if err != nil {
		return nil, err
	}

	switch {
	case srcInfo.Mode().IsRegular():
		return []Result{im.imitate(ctx, src, dest)}, nil
	case srcInfo.IsDir():
		return im.ImitateAll(ctx, src, dest)
	default:
		return nil, errors.New(errors.KindInvalidPath, "run", src, "is not a regular file nor a directory")
	}
}

// CheckPaths verifies that src exists and dest is an existing directory.
// It returns the source's file info.
func CheckPaths(src, dest string) (os.FileInfo, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return nil, pathError(src, err)
	}

	destInfo, err := os.Stat(dest)
	if err != nil {
		return nil, pathError(dest, err)
	}
	if !destInfo.IsDir() {
		return nil, errors.New(errors.KindInvalidPath, "run", dest, "is not a directory")
	}

	return srcInfo, nil
}

func pathError(path string, err error) error {
	if os.IsNotExist(err) {
		return errors.New(errors.KindInvalidPath, "run", path, "does not exist")
	}
	return errors.Wrap(errors.KindInvalidPath, "run", path, "stat", err)
}

const readDirChunk = 64

// Entries yields the immediate entries of dir in directory order, reading
// them in chunks. Nothing is sorted and each range lists dir afresh.
func Entries(dir string) iter.Seq2[os.DirEntry, error] {
	return func(yield func(os.DirEntry, error) bool) {
		f, err := os.Open(dir)
		if err != nil {
			yield(nil, errors.Wrap(errors.KindInvalidPath, "list", dir, "open directory", err))
			return
		}
		defer f.Close()

		for {
			entries, err := f.ReadDir(readDirChunk)
			for _, e := range entries {
				if !yield(e, nil) {
					return
				}
			}
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(nil, errors.Wrap(errors.KindInvalidPath, "list", dir, "read directory", err))
				return
			}
		}
	}
}

// String renders r as a single report line.
func (r Result) String() string {
	if r.Err != nil {
		return fmt.Sprintf("Error: %s: %v", r.Source, r.Err)
	}
	return fmt.Sprintf("Done: %s -> %s", r.Source, r.Dest)
}
