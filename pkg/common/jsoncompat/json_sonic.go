//go:build !nosonic

package jsoncompat

import (
	"io"

	"github.com/bytedance/sonic"
)

var api = sonic.ConfigStd

// Marshal proxies to sonic with standard library compatible settings.
func Marshal(v any) ([]byte, error) { return api.Marshal(v) }

// MarshalIndent proxies to sonic MarshalIndent.
func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return api.MarshalIndent(v, prefix, indent)
}

// Unmarshal proxies to sonic with standard library compatible settings.
func Unmarshal(data []byte, v any) error { return api.Unmarshal(data, v) }

// NewEncoder returns a sonic stream encoder.
func NewEncoder(w io.Writer) Encoder { return api.NewEncoder(w) }

// NewDecoder returns a sonic stream decoder.
func NewDecoder(r io.Reader) Decoder { return api.NewDecoder(r) }
