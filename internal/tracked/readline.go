package tracked

import (
	"errors"
	"io"
)

// ReadLine returns the next complete line, terminator included.
//
// It returns false when no complete line is available yet: the file is not
// open, it is fully drained, or the last line is still being written. In
// every such case the read position is left where it was, so a line that is
// completed later is returned whole.
func (f *File) ReadLine() (string, bool) {
	if !f.ReopenIfOutdated() {
		return "", false
	}

	prev := f.offset
	line, err := f.readRawLine()
	if err != nil && !errors.Is(err, io.EOF) {
		f.logger.Warn("read failed", "path", f.path, "offset", prev, "error", err)
	}

	if isTerminated(line) {
		return line, true
	}

	if f.offset != prev {
		if _, err := f.Seek(prev, io.SeekStart); err != nil {
			f.logger.Warn("cannot restore read position",
				"path", f.path, "offset", prev, "error", err)
		}
	}
	return "", false
}
