package utils

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	// ErrInvalidUTF8 is returned by the UTF-8 decoders on malformed input.
	ErrInvalidUTF8 = errors.New("invalid UTF-8 byte sequence")
	// ErrNoSignature is returned by the utf-8-sig decoder when the BOM is absent.
	ErrNoSignature = errors.New("no UTF-8 signature")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// TextDecoder is one attempt of the decoding chain.
type TextDecoder struct {
	Name   string
	Decode func(data []byte) (string, error)
}

// DefaultDecoders is the order game text files are tried in: UTF-8 with
// signature, plain UTF-8, then Windows-1252.
var DefaultDecoders = []TextDecoder{
	{Name: "utf-8-sig", Decode: decodeUTF8BOM},
	{Name: "utf-8", Decode: decodeUTF8},
	{Name: "windows-1252", Decode: decodeWith(charmap.Windows1252)},
}

// ReadTextFile reads path and decodes it with DefaultDecoders.
func ReadTextFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	text, err := DecodeText(data, DefaultDecoders...)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", path, err)
	}
	return text, nil
}

// DecodeText tries each decoder in turn and returns the first success. When
// every decoder fails the last error is returned.
func DecodeText(data []byte, decoders ...TextDecoder) (string, error) {
	if len(decoders) == 0 {
		return "", errors.New("no text decoders")
	}
	var lastErr error
	for _, d := range decoders {
		text, err := d.Decode(data)
		if err == nil {
			return text, nil
		}
		lastErr = fmt.Errorf("%s: %w", d.Name, err)
	}
	return "", lastErr
}

// decodeUTF8BOM requires a leading signature and valid UTF-8, and strips the
// signature.
func decodeUTF8BOM(data []byte) (string, error) {
	if !bytes.HasPrefix(data, utf8BOM) {
		return "", ErrNoSignature
	}
	if !utf8.Valid(data) {
		return "", ErrInvalidUTF8
	}
	decoder := unicode.UTF8BOM.NewDecoder()
	out, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func decodeUTF8(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", ErrInvalidUTF8
	}
	return string(data), nil
}

func decodeWith(enc encoding.Encoding) func([]byte) (string, error) {
	return func(data []byte) (string, error) {
		out, _, err := transform.Bytes(enc.NewDecoder(), data)
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
}
