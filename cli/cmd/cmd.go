package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ardnew/jslight/lang"
)

// contextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// Vars returns the kong variables referenced by the subcommand tags.
func Vars() kong.Vars {
	return kong.Vars{
		FormatEnumIdentifier: strings.Join(slices.Collect(lang.Formats()), ","),
	}
}

// output returns the writer commands print results to: the kong context's
// stdout if there is one, and os.Stdout otherwise.
func output(ctx context.Context) io.Writer {
	if ktx := kongContextFrom(ctx); ktx != nil && ktx.Stdout != nil {
		return ktx.Stdout
	}

	return os.Stdout
}

// modelVar returns the named kong variable, or "" outside of a kong context.
func modelVar(ctx context.Context, name string) string {
	ktx := kongContextFrom(ctx)
	if ktx == nil || ktx.Model == nil {
		return ""
	}

	return ktx.Model.Vars()[name]
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// source is an opened program file.
type source struct {
	name string
	io.ReadCloser
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// openSources opens the named program files in order. A file named more
// than once, through any path or symlink, is opened only once, and all
// occurrences of "-" read stdin once at the position of the first.
func openSources(names []string) ([]source, error) {
	if len(names) == 0 {
		return nil, ErrNoSource
	}

	srcs := make([]source, 0, len(names))
	seen := make(map[fileKey]struct{})

	stdin := false

	for _, name := range names {
		if name == stdinSource {
			if !stdin {
				stdin = true

				srcs = append(srcs, source{name: "<stdin>", ReadCloser: io.NopCloser(os.Stdin)})
			}

			continue
		}

		src, ok, err := openUniqueFile(name, seen)
		if err != nil {
			closeSources(srcs)

			return nil, ErrOpenSource.
				With(slog.String("file", name)).
				Wrap(err)
		}

		if ok {
			srcs = append(srcs, src)
		}
	}

	return srcs, nil
}

// openUniqueFile opens the file at path if it hasn't been seen before.
// It resolves symlinks and uses device/inode to detect duplicates. A
// duplicate returns false with a nil error.
func openUniqueFile(path string, seen map[fileKey]struct{}) (source, bool, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return source{}, false, err
	}

	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return source{}, false, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return source{}, false, err
	}

	if key, ok := makeFileKey(info); ok {
		if _, exists := seen[key]; exists {
			return source{}, false, nil
		}

		seen[key] = struct{}{}
	}

	file, err := os.Open(resolved)
	if err != nil {
		return source{}, false, err
	}

	return source{name: path, ReadCloser: file}, true, nil
}

func closeSources(srcs []source) {
	for _, s := range srcs {
		_ = s.Close()
	}
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: stat.Dev, ino: stat.Ino}, true
}
