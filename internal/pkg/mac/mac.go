// Package mac validates and normalizes device hardware addresses.
package mac

import (
	"encoding/hex"
	"errors"
	"strings"
)

var ErrInvalid = errors.New("invalid MAC address")

// Normalize accepts aa:bb:cc:dd:ee:ff, aa-bb-cc-dd-ee-ff or aabbccddeeff in any case
// and returns the lowercase colon-separated form.
func Normalize(s string) (string, error) {
	s = strings.TrimSpace(s)

	var raw string
	switch len(s) {
	case 17:
		sep := s[2]
		if sep != ':' && sep != '-' {
			return "", ErrInvalid
		}
		for i := 2; i < len(s); i += 3 {
			if s[i] != sep {
				return "", ErrInvalid
			}
		}
		raw = strings.ReplaceAll(s, string(sep), "")
	case 12:
		raw = s
	default:
		return "", ErrInvalid
	}

	b, err := hex.DecodeString(raw)
	if err != nil || len(b) != 6 {
		return "", ErrInvalid
	}

	parts := make([]string, len(b))
	for i, octet := range b {
		parts[i] = hex.EncodeToString([]byte{octet})
	}
	return strings.Join(parts, ":"), nil
}

// OUI returns the vendor prefix (first three octets, uppercase).
func OUI(s string) (string, error) {
	n, err := Normalize(s)
	if err != nil {
		return "", err
	}
	return strings.ToUpper(n[:8]), nil
}
