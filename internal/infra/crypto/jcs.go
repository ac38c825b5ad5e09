package crypto

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Canonicalize re-encodes a JSON document in RFC 8785 canonical form:
// object members sorted by key at every depth, numbers in ES6 shortest
// form, strings minimally escaped. Every binding hash in the object
// format is computed over this form.
func Canonicalize(input []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(input))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := expectEOF(dec); err != nil {
		return nil, err
	}
	return appendCanonical(nil, value)
}

// CanonicalizeValue canonicalizes any JSON-marshalable Go value.
func CanonicalizeValue(v any) ([]byte, error) {
	switch value := v.(type) {
	case json.RawMessage:
		return Canonicalize([]byte(value))
	case []byte:
		return Canonicalize(value)
	default:
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		return Canonicalize(encoded)
	}
}

func expectEOF(dec *json.Decoder) error {
	if err := dec.Decode(new(any)); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return errors.New("invalid JSON: trailing data")
}

func appendCanonical(dst []byte, value any) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return append(dst, "null"...), nil
	case bool:
		if v {
			return append(dst, "true"...), nil
		}
		return append(dst, "false"...), nil
	case string:
		return appendString(dst, v), nil
	case json.Number:
		f, err := strconv.ParseFloat(v.String(), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid JSON number: %w", err)
		}
		return appendNumber(dst, f)
	case float64:
		return appendNumber(dst, v)
	case map[string]any:
		return appendObject(dst, v)
	case []any:
		return appendArray(dst, v)
	default:
		return nil, fmt.Errorf("unsupported JSON type %T", value)
	}
}

func appendObject(dst []byte, obj map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	dst = append(dst, '{')
	for i, k := range keys {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = appendString(dst, k)
		dst = append(dst, ':')
		var err error
		dst, err = appendCanonical(dst, obj[k])
		if err != nil {
			return nil, err
		}
	}
	return append(dst, '}'), nil
}

func appendArray(dst []byte, arr []any) ([]byte, error) {
	dst = append(dst, '[')
	for i, item := range arr {
		if i > 0 {
			dst = append(dst, ',')
		}
		var err error
		dst, err = appendCanonical(dst, item)
		if err != nil {
			return nil, err
		}
	}
	return append(dst, ']'), nil
}

const hexDigits = "0123456789abcdef"

func appendString(dst []byte, s string) []byte {
	dst = append(dst, '"')
	for _, r := range s {
		switch r {
		case '"', '\\':
			dst = append(dst, '\\', byte(r))
		case '\b':
			dst = append(dst, '\\', 'b')
		case '\f':
			dst = append(dst, '\\', 'f')
		case '\n':
			dst = append(dst, '\\', 'n')
		case '\r':
			dst = append(dst, '\\', 'r')
		case '\t':
			dst = append(dst, '\\', 't')
		default:
			if r < 0x20 {
				dst = append(dst, '\\', 'u', '0', '0', hexDigits[r>>4], hexDigits[r&0x0f])
			} else {
				dst = utf8.AppendRune(dst, r)
			}
		}
	}
	return append(dst, '"')
}

func appendNumber(dst []byte, f float64) ([]byte, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, errors.New("invalid JSON number")
	}
	return append(dst, formatNumber(f)...), nil
}

// formatNumber mirrors ES6 Number#toString: plain decimal notation while
// the exponent stays in (-7, 21), scientific outside that range.
func formatNumber(f float64) string {
	if f == 0 {
		return "0"
	}
	sign := ""
	if f < 0 {
		sign = "-"
		f = -f
	}

	sci := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, expStr, _ := strings.Cut(sci, "e")
	exp, _ := strconv.Atoi(expStr)
	digits := strings.ReplaceAll(mantissa, ".", "")

	switch {
	case exp <= -7 || exp >= 21:
		if len(digits) == 1 {
			return sign + digits + "e" + strconv.Itoa(exp)
		}
		return sign + digits[:1] + "." + digits[1:] + "e" + strconv.Itoa(exp)
	case exp+1 >= len(digits):
		return sign + digits + strings.Repeat("0", exp+1-len(digits))
	case exp < 0:
		return sign + "0." + strings.Repeat("0", -exp-1) + digits
	default:
		return sign + digits[:exp+1] + "." + digits[exp+1:]
	}
}
