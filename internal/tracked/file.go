package tracked

import (
	"bufio"
	"io"
	"log/slog"
	"os"
)

// OpenOptions are forwarded to the os.OpenFile call that opens the path.
type OpenOptions struct {
	// Flag is OR'ed with os.O_RDONLY (e.g. syscall.O_NONBLOCK for a FIFO).
	Flag int
}

// Option configures a File.
type Option func(*File)

// WithOpenOptions sets the options used every time the path is opened.
func WithOpenOptions(o OpenOptions) Option {
	return func(f *File) {
		f.openOptions = o
	}
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(f *File) {
		if l != nil {
			f.logger = l
		}
	}
}

// File tracks the file currently found at a path.
//
// File is not safe for concurrent use.
type File struct {
	path        string
	openOptions OpenOptions
	logger      *slog.Logger

	// Live handle. file, reader and info are either all set or all nil.
	file   *os.File
	reader *bufio.Reader
	info   os.FileInfo
	id     FileID

	// offset is the logical read position: the file offset minus whatever
	// reader has buffered but not handed out yet.
	offset int64
}

// New creates a File for path. No I/O happens until the first read.
func New(path string, opts ...Option) *File {
	f := &File{
		path:   path,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Path returns the followed path.
func (f *File) Path() string {
	return f.path
}

// IsOpen reports whether a live handle is present.
func (f *File) IsOpen() bool {
	return f.file != nil
}

// Identity returns the identity recorded when the live handle was opened.
// It is the zero FileID when nothing is open.
func (f *File) Identity() FileID {
	return f.id
}

// Offset returns the current read position in the live handle.
func (f *File) Offset() int64 {
	return f.offset
}

// Open closes the current handle, if any, and opens the path again.
// Failing to open is not an error: the File is simply left without a handle.
func (f *File) Open() {
	f.logger.Debug("opening file", "path", f.path)

	if err := f.Close(); err != nil {
		f.logger.Debug("closing previous handle", "path", f.path, "error", err)
	}

	file, err := os.OpenFile(f.path, os.O_RDONLY|f.openOptions.Flag, 0)
	if err != nil {
		f.logger.Debug("cannot open file", "path", f.path, "error", err)
		return
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		f.logger.Debug("cannot stat opened file", "path", f.path, "error", err)
		return
	}

	// A missing FileID only degrades logging; identity checks use info.
	id, err := fileID(file)
	if err != nil {
		f.logger.Debug("file identity unavailable", "path", f.path, "error", err)
	}

	f.file = file
	f.reader = bufio.NewReader(file)
	f.info = info
	f.id = id
	f.offset = 0
}

// Close releases the live handle. It is safe to call repeatedly.
func (f *File) Close() error {
	if f.file == nil {
		return nil
	}

	err := f.file.Close()
	f.file = nil
	f.reader = nil
	f.info = nil
	f.id = FileID{}
	f.offset = 0
	return err
}

// IsOutdated reports whether the live handle no longer matches the path.
//
// A File without a handle is always outdated. A path that cannot be stat'ed
// is treated as still denoting the open file, so a deleted file is drained
// before anything that later appears at the path is opened.
func (f *File) IsOutdated() bool {
	if f.file == nil {
		return true
	}

	current, err := os.Stat(f.path)
	if err != nil {
		return false
	}
	return !os.SameFile(f.info, current)
}

// ReopenIfOutdated reopens the path when the live handle is outdated.
// It reports whether an up to date handle is present afterwards.
func (f *File) ReopenIfOutdated() bool {
	if !f.IsOutdated() {
		return true
	}

	if f.file != nil {
		old := f.id
		f.Open()
		if f.file != nil {
			f.logger.Info("file rotated, reopened",
				"path", f.path, "old", old.String(), "new", f.id.String())
		}
	} else {
		f.Open()
	}

	return !f.IsOutdated()
}

// Seek sets the read position of the live handle and discards buffered input.
// Without a handle it does nothing and returns 0.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	if f.file == nil {
		return 0, nil
	}

	// The OS offset runs ahead of the logical one by whatever is buffered.
	if whence == io.SeekCurrent {
		offset += f.offset
		whence = io.SeekStart
	}

	pos, err := f.file.Seek(offset, whence)
	if err != nil {
		return f.offset, err
	}
	f.offset = pos
	f.reader.Reset(f.file)
	return pos, nil
}

// readRawLine reads from the current position up to and including the next
// line terminator. "\r\n" counts as one terminator when both bytes are
// available. At end of file the bytes read so far are returned with io.EOF.
func (f *File) readRawLine() (string, error) {
	if f.reader == nil {
		return "", io.EOF
	}

	var line []byte
	for {
		b, err := f.reader.ReadByte()
		if err != nil {
			return string(line), err
		}
		line = append(line, b)
		f.offset++

		switch b {
		case '\n':
			return string(line), nil
		case '\r':
			if next, err := f.reader.Peek(1); err == nil && next[0] == '\n' {
				_, _ = f.reader.ReadByte()
				line = append(line, '\n')
				f.offset++
			}
			return string(line), nil
		}
	}
}

// isTerminated reports whether line ends with a line break.
func isTerminated(line string) bool {
	if line == "" {
		return false
	}
	last := line[len(line)-1]
	return last == '\n' || last == '\r'
}
