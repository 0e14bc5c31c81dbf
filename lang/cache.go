package lang

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
)

// cache stores parsed programs keyed by the hash of their file name and
// source text.
var cache sync.Map

// entry is parsed exactly once, no matter how many readers ask for it.
type entry struct {
	once sync.Once
	prg  *Prg
	err  error
}

// ParseReader reads all of r and parses it as a program.
//
// Parsed programs are cached by content, so parsing the same source again
// returns the same *Prg. Syntax errors are cached as well.
func ParseReader(ctx context.Context, r io.Reader, opts ...Option) (*Prg, error) {
	cfg := makeConfig(opts...)

	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).With(slog.String("file", cfg.filename))
	}

	source := string(data)

	cfg.logger.TraceContext(ctx, "read input",
		slog.Int("source_bytes", len(source)),
		slog.Bool("read_ahead", true),
	)

	hash := xxh3.HashString(cfg.filename + "\x00" + source)

	value, loaded := cache.LoadOrStore(hash, new(entry))
	e := value.(*entry)

	cfg.logger.TraceContext(ctx, "cache lookup",
		slog.String("source_hash", strconv.FormatUint(hash, 16)),
		slog.Bool("cache_hit", loaded),
	)

	e.once.Do(func() {
		e.prg, e.err = ParseProgram(ctx, source, opts...)
	})

	return e.prg, e.err
}

// ClearCache removes all cached programs.
func ClearCache() {
	cache.Clear()
}
