package bytecode

import "github.com/deepnoodle-ai/hbc/cursor"

// ExceptionHandler describes one try region of a function. All offsets are
// relative to the function's bytecode.
type ExceptionHandler struct {
	Start  uint32 // first offset covered by the try region
	End    uint32 // offset just past the try region
	Target uint32 // offset of the catch block
}

func readExceptionHandler(c *cursor.Cursor) (ExceptionHandler, error) {
	var h ExceptionHandler
	var err error
	if h.Start, err = c.U32(); err != nil {
		return h, err
	}
	if h.End, err = c.U32(); err != nil {
		return h, err
	}
	h.Target, err = c.U32()
	return h, err
}
