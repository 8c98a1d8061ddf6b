package securestore

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"unicode/utf16"

	"golang.org/x/crypto/blake2b"

	"github.com/julianstephens/habitchain/internal/constants"
)

// Checksummer computes the integrity tag stored alongside a serialized payload.
type Checksummer interface {
	Sum(data string) string
	Mode() string
}

// RollingChecksum is a 32-bit polynomial hash (h = h*31 + c) over UTF-16 code
// units, rendered as the lowercase hex of its absolute value. It detects
// accidental corruption only and offers no tamper resistance.
type RollingChecksum struct{}

func (RollingChecksum) Sum(data string) string {
	var h int32
	for _, c := range utf16.Encode([]rune(data)) {
		h = h*31 + int32(c)
	}
	abs := int64(h)
	if abs < 0 {
		abs = -abs
	}
	return strconv.FormatInt(abs, 16)
}

func (RollingChecksum) Mode() string { return constants.IntegrityChecksum }

// KeyedChecksum is a BLAKE2b-256 MAC keyed with a secret held outside the data
// directory. Unlike RollingChecksum it detects deliberate edits.
type KeyedChecksum struct {
	key []byte
}

func NewKeyedChecksum(key []byte) (*KeyedChecksum, error) {
	if len(key) != constants.IntegrityKeyBytes {
		return nil, fmt.Errorf("integrity key must be %d bytes, got %d", constants.IntegrityKeyBytes, len(key))
	}
	return &KeyedChecksum{key: append([]byte(nil), key...)}, nil
}

func (k *KeyedChecksum) Sum(data string) string {
	h, err := blake2b.New256(k.key)
	if err != nil {
		// Only reachable with a key longer than 64 bytes, which NewKeyedChecksum rejects.
		panic(err)
	}
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

func (k *KeyedChecksum) Mode() string { return constants.IntegrityKeyed }

// Marshal serializes v as compact JSON without HTML escaping, matching the
// form the checksum is computed over.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
