// Package tail follows a growing text file and reports complete lines.
//
// The follower watches the file's directory with fsnotify so that rotation
// (rename or remove followed by a new file) and truncation are noticed
// without polling. Partial lines are held until their newline arrives.
package tail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/logship/pkg/log"
)

// sumLen is how many bytes before the read offset are kept to recognise a
// file that was truncated and then grew past the offset again.
const sumLen = 64

// Handler receives the lines read by one drain of the file, in file order,
// without their line terminators.
type Handler func(ctx context.Context, lines []string)

// Config configures a Follower.
type Config struct {
	// Path is the file to follow.
	Path string

	// FromStart ships the existing content first instead of starting at the end.
	FromStart bool

	// Logger receives watcher and read errors. Defaults to a no-op logger.
	Logger log.Logger
}

// Follower reads lines appended to a file.
type Follower struct {
	path      string
	fromStart bool
	logger    log.Logger
	handle    Handler

	file    *os.File
	offset  int64
	pending []byte
	readBuf []byte

	// sum holds the last bytes read before offset.
	sum []byte
}

// New creates a follower. Call Run to start it.
func New(cfg Config, handle Handler) *Follower {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Follower{
		path:      filepath.Clean(cfg.Path),
		fromStart: cfg.FromStart,
		logger:    logger.With(log.String("file", cfg.Path)),
		handle:    handle,
		readBuf:   make([]byte, 32*1024),
	}
}

// Run follows the file until ctx is cancelled. It returns an error only if
// the watcher cannot be set up.
func (f *Follower) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(f.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(f.path), err)
	}
	defer f.closeFile()

	if err := f.open(!f.fromStart); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		f.logger.Warn("file does not exist yet, waiting for it")
	} else if f.fromStart {
		f.drain(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != f.path {
				continue
			}
			f.onEvent(ctx, event)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			f.logger.Warn("watcher error", log.Err(err))
		}
	}
}

func (f *Follower) onEvent(ctx context.Context, event fsnotify.Event) {
	switch {
	case event.Has(fsnotify.Create):
		// a new file under the same name: rotation finished
		f.drain(ctx)
		f.closeFile()
		if err := f.open(false); err != nil {
			f.logger.Warn("reopen failed", log.Err(err))
			return
		}
		f.logger.Info("file rotated, reading from start")
		f.drain(ctx)

	case event.Has(fsnotify.Write):
		if f.file == nil {
			if err := f.open(false); err != nil {
				f.logger.Warn("open failed", log.Err(err))
				return
			}
		}
		f.checkTruncated()
		f.drain(ctx)

	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		f.drain(ctx)
		f.closeFile()
	}
}

// open opens the file, optionally positioned at its current end.
func (f *Follower) open(atEnd bool) error {
	file, err := os.Open(f.path)
	if err != nil {
		return err
	}
	var off int64
	if atEnd {
		off, err = file.Seek(0, io.SeekEnd)
		if err != nil {
			file.Close()
			return fmt.Errorf("seek end: %w", err)
		}
	}
	f.file = file
	f.offset = off
	f.pending = f.pending[:0]
	f.sum = f.sum[:0]
	if off > 0 {
		n := min(off, sumLen)
		buf := make([]byte, n)
		if _, err := file.ReadAt(buf, off-n); err == nil {
			f.sum = append(f.sum, buf...)
		}
	}
	return nil
}

func (f *Follower) closeFile() {
	if f.file != nil {
		f.file.Close()
		f.file = nil
	}
}

// checkTruncated rewinds after a copytruncate. The file either shrank below
// the read offset or, when the events were coalesced and new writes already
// pushed it past the offset, no longer holds the bytes last read.
func (f *Follower) checkTruncated() {
	st, err := f.file.Stat()
	if err != nil {
		return
	}
	if st.Size() >= f.offset && !f.rewritten() {
		return
	}
	if _, err := f.file.Seek(0, io.SeekStart); err != nil {
		f.logger.Warn("rewind after truncation failed", log.Err(err))
		return
	}
	f.logger.Info("file truncated, reading from start")
	f.offset = 0
	f.pending = f.pending[:0]
	f.sum = f.sum[:0]
}

// rewritten reports whether the bytes just before offset differ from sum.
func (f *Follower) rewritten() bool {
	if len(f.sum) == 0 {
		return false
	}
	buf := make([]byte, len(f.sum))
	n, _ := f.file.ReadAt(buf, f.offset-int64(len(buf)))
	return n < len(buf) || !bytes.Equal(buf, f.sum)
}

func (f *Follower) remember(b []byte) {
	if len(b) > sumLen {
		b = b[len(b)-sumLen:]
	}
	f.sum = append(f.sum, b...)
	if over := len(f.sum) - sumLen; over > 0 {
		f.sum = append(f.sum[:0], f.sum[over:]...)
	}
}

// drain reads everything currently available and hands complete lines to the handler.
func (f *Follower) drain(ctx context.Context) {
	if f.file == nil {
		return
	}
	for {
		n, err := f.file.Read(f.readBuf)
		if n > 0 {
			f.pending = append(f.pending, f.readBuf[:n]...)
			f.offset += int64(n)
			f.remember(f.readBuf[:n])
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				f.logger.Warn("read failed", log.Err(err))
			}
			break
		}
	}

	if lines := f.takeLines(); len(lines) > 0 {
		f.handle(ctx, lines)
	}
}

// takeLines removes complete lines from pending.
func (f *Follower) takeLines() []string {
	var lines []string
	rest := f.pending
	for {
		i := bytes.IndexByte(rest, '\n')
		if i < 0 {
			break
		}
		lines = append(lines, string(bytes.TrimSuffix(rest[:i], []byte{'\r'})))
		rest = rest[i+1:]
	}
	f.pending = append(f.pending[:0], rest...)
	return lines
}
