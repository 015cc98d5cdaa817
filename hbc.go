// Package hbc reads Hermes bytecode containers.
//
// Open and Read return a [bytecode.File] with lazily resolved strings and
// functions:
//
//	file, err := hbc.Open("index.android.bundle")
//	if err != nil {
//	    return err
//	}
//	fn, err := file.Function(0)
//
// Disassembly text is produced by the dis package.
package hbc

import (
	"fmt"
	"io"
	"os"

	"github.com/deepnoodle-ai/hbc/bytecode"
)

// Open reads the whole file at path and decodes it.
func Open(path string, opts ...Option) (*bytecode.File, error) {
	o := collectOptions(opts...)
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if o.maxSize > 0 {
		info, err := f.Stat()
		if err != nil {
			return nil, err
		}
		if info.Size() > o.maxSize {
			return nil, fmt.Errorf("%s: file size %d exceeds limit %d", path, info.Size(), o.maxSize)
		}
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	file, err := decode(data, o)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return file, nil
}

// ReadFrom reads r to the end and decodes the result.
func ReadFrom(r io.Reader, opts ...Option) (*bytecode.File, error) {
	o := collectOptions(opts...)
	var src io.Reader = r
	if o.maxSize > 0 {
		src = io.LimitReader(r, o.maxSize+1)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	if o.maxSize > 0 && int64(len(data)) > o.maxSize {
		return nil, fmt.Errorf("input exceeds limit %d", o.maxSize)
	}
	return decode(data, o)
}

// Read decodes data. The buffer is retained by the returned File and must
// not be modified afterwards.
func Read(data []byte, opts ...Option) (*bytecode.File, error) {
	return decode(data, collectOptions(opts...))
}

func decode(data []byte, o *options) (*bytecode.File, error) {
	return bytecode.Read(data, &bytecode.Config{Observer: o.observer()})
}
