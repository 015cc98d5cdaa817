package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("export: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// WriteJSON writes img as indented JSON.
func WriteJSON(w io.Writer, img *Image) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(img)
}

// ReadJSON decodes an image written by WriteJSON.
func ReadJSON(r io.Reader) (*Image, error) {
	var img Image
	if err := json.NewDecoder(r).Decode(&img); err != nil {
		return nil, fmt.Errorf("export: decode json: %w", err)
	}
	return &img, nil
}

// WriteCBOR writes img in canonical CBOR, so equal images encode to equal
// bytes.
func WriteCBOR(w io.Writer, img *Image) error {
	return cborEncMode.NewEncoder(w).Encode(img)
}

// ReadCBOR decodes an image written by WriteCBOR.
func ReadCBOR(r io.Reader) (*Image, error) {
	var img Image
	if err := cbor.NewDecoder(r).Decode(&img); err != nil {
		return nil, fmt.Errorf("export: decode cbor: %w", err)
	}
	return &img, nil
}
