package bytecode

import "time"

// Observer is an interface for observing decode events.
// Implementations can be used for timing, logging or access counting
// without modifying the decoder.
//
// All methods are optional - implementations can embed NoOpObserver
// to provide default no-op implementations for methods they don't need.
//
// Observer methods are called synchronously on the goroutine that
// triggered the decode. Implementations should be fast.
type Observer interface {
	// OnRegion is called once per table region while the image is read.
	OnRegion(event RegionEvent)

	// OnFunction is called when a function is first constructed.
	OnFunction(event FunctionEvent)

	// OnDecode is called when a function's instruction stream is first
	// decoded, whether or not the decode succeeded.
	OnDecode(event DecodeEvent)
}

// RegionEvent describes one table region of the container.
type RegionEvent struct {
	// Name is the region name, e.g. "string storage".
	Name string

	// Offset is the absolute offset of the region's first byte.
	Offset int

	// Size is the region size in bytes.
	Size int

	// Count is the number of entries, or 0 for raw byte regions.
	Count int

	Duration time.Duration
}

// FunctionEvent describes the construction of a Function.
type FunctionEvent struct {
	ID   int
	Name string
	Form HeaderForm

	Duration time.Duration
}

// DecodeEvent describes the decoding of one function's instructions.
type DecodeEvent struct {
	Function     int
	Instructions int
	Bytes        int
	Err          error

	Duration time.Duration
}

// NoOpObserver is an Observer implementation that does nothing.
// Embed this in your observer to provide default implementations
// for methods you don't need.
type NoOpObserver struct{}

func (NoOpObserver) OnRegion(RegionEvent)     {}
func (NoOpObserver) OnFunction(FunctionEvent) {}
func (NoOpObserver) OnDecode(DecodeEvent)     {}

// Ensure NoOpObserver implements Observer.
var _ Observer = NoOpObserver{}
