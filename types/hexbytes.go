package types

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// HexBytes is a []byte which encodes as hexadecimal in json, as opposed to the
// base64 default.
type HexBytes []byte

// String returns the 0x-prefixed hexadecimal representation.
func (b HexBytes) String() string {
	return "0x" + hex.EncodeToString(b)
}

// MarshalJSON encodes the bytes as a 0x-prefixed hexadecimal JSON string.
func (b HexBytes) MarshalJSON() ([]byte, error) {
	enc := make([]byte, hex.EncodedLen(len(b))+4)
	copy(enc, `"0x`)
	hex.Encode(enc[3:], b)
	enc[len(enc)-1] = '"'
	return enc, nil
}

// UnmarshalJSON decodes a JSON string holding hexadecimal data, with or
// without the 0x prefix.
func (b *HexBytes) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("invalid JSON string: %q", data)
	}
	dec, err := HexStringToHexBytes(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*b = dec
	return nil
}

// HexStringToHexBytes decodes a hex string, with or without the 0x prefix.
// Surrounding whitespace is ignored, so the content of text files can be
// passed directly.
func HexStringToHexBytes(hexString string) (HexBytes, error) {
	hexString = strings.TrimSpace(hexString)
	if len(hexString) >= 2 && hexString[0] == '0' && (hexString[1] == 'x' || hexString[1] == 'X') {
		hexString = hexString[2:]
	}
	b, err := hex.DecodeString(hexString)
	if err != nil {
		return nil, fmt.Errorf("invalid hex string %q: %w", hexString, err)
	}
	return b, nil
}
