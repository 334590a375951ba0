package jsoncompat

// Encoder is the subset of json.Encoder shared by both backends.
type Encoder interface {
	Encode(v any) error
	SetIndent(prefix, indent string)
}

// Decoder is the subset of json.Decoder shared by both backends.
type Decoder interface {
	Decode(v any) error
}
