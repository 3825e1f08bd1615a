// Package orderkey allocates sibling order keys: sortable strings over a
// base-36 alphabet supporting unbounded insertion between any two existing
// keys without rewriting neighbors. Concurrent inserts at different gaps
// therefore never collide and never need to lock the sibling set.
package orderkey

import (
	"errors"
	"fmt"
	"strings"
)

const digits = "0123456789abcdefghijklmnopqrstuvwxyz"

const base = len(digits)

// MaxKeyLength is the advisory subdivision limit. Keys beyond it still sort
// correctly; crossing it signals that the parent's children are worth
// rescaling in the background.
const MaxKeyLength = 64

// ErrInvalidKey is returned when an input is not a well-formed order key.
var ErrInvalidKey = errors.New("invalid order key")

// Between returns a key strictly between prev and next. An empty prev means
// no lower bound, an empty next means no upper bound; with both empty it
// returns the initial key for a first child.
func Between(prev, next string) (string, error) {
	if err := validate(prev); err != nil {
		return "", err
	}
	if err := validate(next); err != nil {
		return "", err
	}
	if prev != "" && next != "" && prev >= next {
		return "", fmt.Errorf("%w: %q is not before %q", ErrInvalidKey, prev, next)
	}

	var mid []byte
	i := 0
	for {
		da := 0
		if i < len(prev) {
			da = strings.IndexByte(digits, prev[i])
		}
		db := base
		if i < len(next) {
			db = strings.IndexByte(digits, next[i])
		}

		switch {
		case da == db:
			mid = append(mid, digits[da])
			i++

		case db-da > 1:
			mid = append(mid, digits[(da+db)/2])
			return string(mid), nil

		default:
			// Adjacent digits: commit the lower one, then pick a digit above
			// whatever remains of prev.
			mid = append(mid, digits[da])
			i++
			for {
				da = 0
				if i < len(prev) {
					da = strings.IndexByte(digits, prev[i])
				}
				if da < base-1 {
					mid = append(mid, digits[(da+base)/2])
					return string(mid), nil
				}
				mid = append(mid, digits[base-1])
				i++
			}
		}
	}
}

// NeedsRescale reports whether allocating this key exhausted enough
// subdivision depth that the parent's children should be rescaled.
func NeedsRescale(key string) bool {
	return len(key) > MaxKeyLength
}

// Keys returns n evenly spaced fresh keys in ascending order, used when
// rescaling a parent's children. The assignment preserves the callers'
// ordering of siblings; failure of a rescale is non-fatal for ordering.
func Keys(n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}

	// Pick the shortest length whose key space leaves a gap of at least one
	// full digit between consecutive keys.
	length := 1
	capacity := uint64(base)
	for capacity/uint64(base) < uint64(n)+1 {
		if length >= 12 {
			return nil, fmt.Errorf("%w: cannot rescale %d siblings", ErrInvalidKey, n)
		}
		length++
		capacity *= uint64(base)
	}

	step := capacity / (uint64(n) + 1)
	keys := make([]string, n)
	for i := 0; i < n; i++ {
		keys[i] = encode(uint64(i+1)*step, length)
	}
	return keys, nil
}

// encode renders v as a fixed-length base-36 string, trimmed of trailing
// minimum digits so the result stays insertable on either side.
func encode(v uint64, length int) string {
	buf := make([]byte, length)
	for i := length - 1; i >= 0; i-- {
		buf[i] = digits[v%uint64(base)]
		v /= uint64(base)
	}
	key := strings.TrimRight(string(buf), "0")
	if key == "" {
		key = string(digits[0])
	}
	return key
}

func validate(key string) error {
	if key == "" {
		return nil
	}
	for i := 0; i < len(key); i++ {
		if strings.IndexByte(digits, key[i]) < 0 {
			return fmt.Errorf("%w: unexpected character %q", ErrInvalidKey, key[i])
		}
	}
	// Keys ending in the minimum digit leave no room for a predecessor at
	// the same depth; Between never emits them and refuses them as input.
	if key[len(key)-1] == digits[0] {
		return fmt.Errorf("%w: trailing minimum digit in %q", ErrInvalidKey, key)
	}
	return nil
}
