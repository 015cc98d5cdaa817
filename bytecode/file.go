package bytecode

import (
	"time"

	"github.com/deepnoodle-ai/hbc/cursor"
)

// Config controls how a container is read.
type Config struct {
	// Observer receives decode events. Nil means no observer.
	Observer Observer
}

// File is a decoded container. Strings and functions are resolved on
// first access and cached for the lifetime of the File. A File is safe for
// concurrent readers.
type File struct {
	data      *Data
	obs       Observer
	strings   *lazySlice[string]
	functions *lazySlice[*Function]
}

// Read decodes the header and table regions of the container in data. The
// buffer is retained and must not be modified afterwards. cfg may be nil.
func Read(data []byte, cfg *Config) (*File, error) {
	var obs Observer = NoOpObserver{}
	if cfg != nil && cfg.Observer != nil {
		obs = cfg.Observer
	}
	d, err := ReadData(cursor.New(data), obs)
	if err != nil {
		return nil, err
	}
	f := &File{data: d, obs: obs}
	f.strings = newLazySlice(RegionStringTable, "string", d.StringCount(), d.String)
	f.functions = newLazySlice(RegionFunctionHeaders, "function", d.FunctionCount(), f.newFunction)
	return f, nil
}

func (f *File) newFunction(id int) (*Function, error) {
	started := time.Now()
	header, err := f.data.FunctionHeader(id)
	if err != nil {
		return nil, err
	}
	name, err := f.String(int(header.FunctionName))
	if err != nil {
		return nil, err
	}
	fn := newFunction(id, header, name, f.data.file, f.obs)
	f.obs.OnFunction(FunctionEvent{
		ID:       id,
		Name:     name,
		Form:     header.Form,
		Duration: time.Since(started),
	})
	return fn, nil
}

// Version returns the bytecode version declared in the header.
func (f *File) Version() uint32 {
	return f.data.Header.Version
}

// Header returns the file header.
func (f *File) Header() *FileHeader {
	return f.data.Header
}

// Data returns low-level access to the table regions.
func (f *File) Data() *Data {
	return f.data
}

// StringCount returns the number of strings.
func (f *File) StringCount() int {
	return f.strings.Len()
}

// String returns the text of string id.
func (f *File) String(id int) (string, error) {
	return f.strings.Get(id)
}

// FunctionCount returns the number of functions.
func (f *File) FunctionCount() int {
	return f.functions.Len()
}

// Function returns function id. Repeated calls return the same *Function.
func (f *File) Function(id int) (*Function, error) {
	return f.functions.Get(id)
}

// GlobalFunction returns the function the header names as global code.
func (f *File) GlobalFunction() (*Function, error) {
	return f.Function(int(f.data.Header.GlobalCodeIndex))
}
