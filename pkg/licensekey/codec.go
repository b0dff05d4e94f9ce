package licensekey

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Codec converts raw key bytes to and from a transportable text form.
type Codec interface {
	Encode(b []byte) string
	Decode(text string) ([]byte, error)
}

// HexCodec encodes keys as lowercase hex and decodes hex of either case.
type HexCodec struct{}

// Encode returns the lowercase hex form of b.
func (HexCodec) Encode(b []byte) string {
	return hex.EncodeToString(b)
}

// Decode parses hex text. Surrounding whitespace is ignored.
func (HexCodec) Decode(text string) ([]byte, error) {
	b, err := hex.DecodeString(strings.TrimSpace(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedKey, err)
	}
	return b, nil
}

// DefaultGroupedCodec renders keys as XXXX-XXXX-... in uppercase hex.
var DefaultGroupedCodec = GroupedCodec{GroupSize: 4, Separator: "-"}

// GroupedCodec renders keys as uppercase hex split into fixed-size groups,
// which is easier to read out over the phone or print on a card. Decoding
// accepts the grouped form, plain hex, lowercase and stray spaces.
type GroupedCodec struct {
	GroupSize int
	Separator string
}

// Encode returns the grouped uppercase hex form of b.
func (c GroupedCodec) Encode(b []byte) string {
	plain := strings.ToUpper(hex.EncodeToString(b))
	if c.GroupSize <= 0 || c.Separator == "" {
		return plain
	}

	var sb strings.Builder
	sb.Grow(len(plain) + len(plain)/c.GroupSize*len(c.Separator))
	for i := 0; i < len(plain); i += c.GroupSize {
		if i > 0 {
			sb.WriteString(c.Separator)
		}
		sb.WriteString(plain[i:min(i+c.GroupSize, len(plain))])
	}

	return sb.String()
}

// Decode normalizes text and parses it as hex.
func (c GroupedCodec) Decode(text string) ([]byte, error) {
	return HexCodec{}.Decode(c.normalize(text))
}

func (c GroupedCodec) normalize(text string) string {
	clean := strings.ReplaceAll(text, " ", "")
	if c.Separator != "" {
		clean = strings.ReplaceAll(clean, c.Separator, "")
	}
	return strings.ToUpper(clean)
}

// CodecByName returns the codec registered under name: "hex" or "grouped".
func CodecByName(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "hex":
		return HexCodec{}, nil
	case "grouped":
		return DefaultGroupedCodec, nil
	default:
		return nil, fmt.Errorf("unknown key codec %q", name)
	}
}
