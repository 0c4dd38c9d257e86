package tracked

import (
	"errors"
	"io"
)

// DefaultBufferLength is the backward window increment used by ReadLastLines
// when none is given.
const DefaultBufferLength = 4096

// ReadLastLines returns the last n complete lines of the file, oldest first.
//
// It seeks back from the end of the file by bufferLength bytes, then by
// 2*bufferLength, and so on, re-reading forward each time, until more than n
// lines were read or the start of the file was reached. A window shorter than
// a line only costs extra rounds.
//
// An unterminated last line is not returned. The read position is left right
// after the last returned line, so that line is picked up by ReadLine once
// it is completed. It returns nil when n is 0 or the file is unavailable.
func (f *File) ReadLastLines(n, bufferLength int) []string {
	f.logger.Debug("reading last lines", "path", f.path, "lines", n)

	if !f.ReopenIfOutdated() {
		return nil
	}
	if bufferLength <= 0 {
		bufferLength = DefaultBufferLength
	}

	end, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		f.logger.Warn("cannot seek to end", "path", f.path, "error", err)
		return nil
	}
	if n <= 0 {
		return nil
	}

	var (
		lines   []string
		partial string
		window  = int64(bufferLength)
	)
	for {
		start := end - window
		reachedStart := start <= 0
		if reachedStart {
			start = 0
		}

		lines, partial = f.readLinesFrom(start)
		if reachedStart || len(lines) > n {
			break
		}
		window += int64(bufferLength)
	}

	if partial != "" {
		if _, err := f.Seek(f.offset-int64(len(partial)), io.SeekStart); err != nil {
			f.logger.Warn("cannot rewind partial line", "path", f.path, "error", err)
		}
	}

	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}

// readLinesFrom reads every complete line from start to the end of the file.
// The unterminated remainder, if any, is returned separately.
func (f *File) readLinesFrom(start int64) (lines []string, partial string) {
	if _, err := f.Seek(start, io.SeekStart); err != nil {
		f.logger.Warn("cannot seek", "path", f.path, "offset", start, "error", err)
		return nil, ""
	}

	for {
		line, err := f.readRawLine()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				f.logger.Warn("read failed", "path", f.path, "offset", f.offset, "error", err)
			}
			return lines, line
		}
		lines = append(lines, line)
	}
}
