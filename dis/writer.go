package dis

import "io"

// IndentedWriter writes lines prefixed with two spaces per indent level.
// The first error from the underlying writer is kept and returned by Err;
// later writes are dropped.
type IndentedWriter struct {
	w       io.Writer
	Indent  int
	pending bool
	err     error
}

// NewIndentedWriter returns a writer at indent level zero.
func NewIndentedWriter(w io.Writer) *IndentedWriter {
	return &IndentedWriter{w: w}
}

func (iw *IndentedWriter) raw(s string) {
	if iw.err != nil {
		return
	}
	_, iw.err = io.WriteString(iw.w, s)
}

func (iw *IndentedWriter) flushIndent() {
	if !iw.pending {
		return
	}
	iw.pending = false
	for i := 0; i < iw.Indent; i++ {
		iw.raw("  ")
	}
}

// Write writes s after any pending indentation.
func (iw *IndentedWriter) Write(s string) *IndentedWriter {
	iw.flushIndent()
	iw.raw(s)
	return iw
}

// WriteLine writes s and a newline. The next write starts indented.
func (iw *IndentedWriter) WriteLine(s string) *IndentedWriter {
	iw.flushIndent()
	iw.raw(s)
	iw.raw("\n")
	iw.pending = true
	return iw
}

// Err returns the first write error.
func (iw *IndentedWriter) Err() error {
	return iw.err
}
