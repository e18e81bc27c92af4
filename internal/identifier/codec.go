package identifier

import (
	"errors"
	"fmt"
	"strings"

	"github.com/speps/go-hashids/v2"

	"discdb/internal/services"
)

const (
	// DefaultAlphabet omits look-alike characters so ids survive being read aloud.
	DefaultAlphabet  = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	DefaultMinLength = 6
)

// Options configures a Codec.
type Options struct {
	Salt      string
	Alphabet  string
	MinLength int
}

// CodecError reports an external identifier that this codec did not produce.
type CodecError struct {
	Value  string
	Reason string
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("invalid reference %q: %s", e.Value, e.Reason)
}

// Is matches services.ErrCodec.
func (e *CodecError) Is(target error) bool {
	return target == services.ErrCodec
}

// Codec encodes and decodes ids. It is safe for concurrent use.
type Codec struct {
	h        *hashids.HashID
	alphabet string
}

// New constructs a Codec. An empty alphabet selects DefaultAlphabet.
func New(opts Options) (*Codec, error) {
	alphabet := strings.TrimSpace(opts.Alphabet)
	if alphabet == "" {
		alphabet = DefaultAlphabet
	}
	if opts.MinLength < 0 {
		return nil, errors.New("identifier min length must not be negative")
	}
	data := hashids.NewData()
	data.Salt = opts.Salt
	data.Alphabet = alphabet
	data.MinLength = opts.MinLength
	h, err := hashids.NewWithData(data)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "identifier", "init", "invalid codec configuration", err)
	}
	return &Codec{h: h, alphabet: alphabet}, nil
}

// Encode returns the external form of id.
func (c *Codec) Encode(id int64) (string, error) {
	if id < 0 {
		return "", fmt.Errorf("encode id %d: negative ids are not issued", id)
	}
	out, err := c.h.EncodeInt64([]int64{id})
	if err != nil {
		return "", fmt.Errorf("encode id %d: %w", id, err)
	}
	return out, nil
}

// MustEncode is Encode for ids already known to be valid.
func (c *Codec) MustEncode(id int64) string {
	out, err := c.Encode(id)
	if err != nil {
		panic(err)
	}
	return out
}

// Decode returns the internal id for value or a *CodecError.
func (c *Codec) Decode(value string) (int64, error) {
	if value == "" {
		return 0, &CodecError{Value: value, Reason: "empty identifier"}
	}
	for _, r := range value {
		if !strings.ContainsRune(c.alphabet, r) {
			return 0, &CodecError{Value: value, Reason: fmt.Sprintf("character %q outside alphabet", r)}
		}
	}
	ids, err := c.h.DecodeInt64WithError(value)
	if err != nil {
		return 0, &CodecError{Value: value, Reason: err.Error()}
	}
	if len(ids) != 1 {
		return 0, &CodecError{Value: value, Reason: fmt.Sprintf("expected one id, decoded %d", len(ids))}
	}
	if ids[0] < 0 {
		return 0, &CodecError{Value: value, Reason: "negative id"}
	}
	// Round-trip check rejects strings with extra or missing characters that
	// still happen to decode.
	if again, err := c.Encode(ids[0]); err != nil || again != value {
		return 0, &CodecError{Value: value, Reason: "not a canonical encoding"}
	}
	return ids[0], nil
}
