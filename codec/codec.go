// Package codec serializes the values exchanged by the command line tools,
// such as cell bundles, in CBOR or JSON.
package codec

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/vocdoni/davinci-das/log"
)

// Encoding defines the serialization format. There are two supported
// formats: EncodingCBOR and EncodingJSON.
type Encoding int

const (
	// EncodingCBOR is the deterministic CBOR encoding format.
	EncodingCBOR Encoding = iota
	// EncodingJSON is the JSON encoding format.
	EncodingJSON
)

// String returns the name of the encoding.
func (e Encoding) String() string {
	switch e {
	case EncodingCBOR:
		return "cbor"
	case EncodingJSON:
		return "json"
	default:
		return fmt.Sprintf("encoding(%d)", int(e))
	}
}

// ParseEncoding returns the encoding named by s, case insensitive.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(s) {
	case "cbor":
		return EncodingCBOR, nil
	case "json":
		return EncodingJSON, nil
	default:
		return 0, fmt.Errorf("unknown encoding %q", s)
	}
}

// EncodingForPath guesses the encoding from the file extension, falling back
// to def.
func EncodingForPath(path string, def Encoding) Encoding {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return EncodingJSON
	case ".cbor":
		return EncodingCBOR
	default:
		return def
	}
}

var cborEncMode = func() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// Encode serializes v. If no format is given, CBOR is used. A JSON encoding
// failure falls back to CBOR.
func Encode(v any, encoding ...Encoding) ([]byte, error) {
	if len(encoding) == 0 {
		return EncodeCBOR(v)
	}
	switch encoding[0] {
	case EncodingCBOR:
		return EncodeCBOR(v)
	case EncodingJSON:
		res, err := EncodeJSON(v)
		if err != nil {
			log.Warnw("falling back to CBOR encoding due to JSON encoding failure", "error", err)
			return EncodeCBOR(v)
		}
		return res, nil
	default:
		return nil, fmt.Errorf("unknown encoding: %s", encoding[0])
	}
}

// Decode deserializes data into out. If no format is given, CBOR is used. A
// JSON decoding failure falls back to CBOR.
func Decode(data []byte, out any, encoding ...Encoding) error {
	if len(encoding) == 0 {
		return DecodeCBOR(data, out)
	}
	switch encoding[0] {
	case EncodingCBOR:
		return DecodeCBOR(data, out)
	case EncodingJSON:
		if err := DecodeJSON(data, out); err != nil {
			log.Warnw("falling back to CBOR decoding due to JSON decoding failure", "error", err)
			return DecodeCBOR(data, out)
		}
		return nil
	default:
		return fmt.Errorf("unknown encoding: %s", encoding[0])
	}
}

// EncodeCBOR encodes v with the core deterministic CBOR options, so equal
// values always produce equal bytes.
func EncodeCBOR(v any) ([]byte, error) {
	data, err := cborEncMode.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("cbor encode: %w", err)
	}
	return data, nil
}

// DecodeCBOR decodes CBOR data into out.
func DecodeCBOR(data []byte, out any) error {
	if err := cbor.Unmarshal(data, out); err != nil {
		return fmt.Errorf("cbor decode: %w", err)
	}
	return nil
}

// EncodeJSON encodes v as indented JSON.
func EncodeJSON(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// DecodeJSON decodes JSON data into out.
func DecodeJSON(data []byte, out any) error {
	return json.Unmarshal(data, out)
}

// WriteFile encodes v and writes it to path. The encoding is taken from the
// file extension, or def when it has none of the known ones.
func WriteFile(path string, v any, def Encoding) error {
	data, err := Encode(v, EncodingForPath(path, def))
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadFile reads path and decodes it into out, choosing the encoding like
// WriteFile does.
func ReadFile(path string, out any, def Encoding) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return Decode(data, out, EncodingForPath(path, def))
}
