package irc

// Framer assembles a connection's byte stream into lines. It owns one
// buffer of fixed capacity that is reused for every line.
type Framer struct {
	buf []byte
}

// NewFramer returns a framer that keeps at most max bytes per line
func NewFramer(max int) Framer {
	return Framer{buf: make([]byte, 0, max)}
}

// Write consumes data, calling emit for every complete line with the
// terminator removed. CR and NUL bytes are discarded and bytes past the
// line limit are dropped until the next LF. Scanning stops early when
// emit returns false; the rest of data is discarded.
func (f *Framer) Write(data []byte, emit func(line string) bool) {
	for _, c := range data {
		switch c {
		case 0, '\r':
			continue
		case '\n':
			line := string(f.buf)
			f.buf = f.buf[:0]
			if !emit(line) {
				return
			}
			continue
		}

		if len(f.buf) < cap(f.buf) {
			f.buf = append(f.buf, c)
		}
	}
}

// Reset discards any partial line
func (f *Framer) Reset() {
	f.buf = f.buf[:0]
}

// Pending returns the number of buffered bytes of the current partial line
func (f *Framer) Pending() int {
	return len(f.buf)
}
