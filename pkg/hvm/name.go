package hvm

import (
	"fmt"
	"strings"

	"lukechampine.com/uint128"
)

// MaxNameLen is the longest name that fits in a 128-bit word.
const MaxNameLen = 12

const nameAlphabet = ".0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz_"

// ValidName reports whether s can be used as a function, constructor or
// variable name: 1 to 12 characters from [.0-9A-Za-z_], not starting with
// '.'.
func ValidName(s string) bool {
	if len(s) == 0 || len(s) > MaxNameLen || s[0] == '.' {
		return false
	}
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(nameAlphabet, s[i]) < 0 {
			return false
		}
	}
	return true
}

// NameToU128 packs a valid name into a 128-bit word, 6 bits per character.
func NameToU128(name string) (uint128.Uint128, error) {
	if !ValidName(name) {
		return uint128.Zero, fmt.Errorf("invalid name %q", name)
	}
	num := uint128.Zero
	for i := 0; i < len(name); i++ {
		num = num.Lsh(6).Or64(uint64(strings.IndexByte(nameAlphabet, name[i])))
	}
	return num, nil
}

// U128ToName is the inverse of NameToU128.
func U128ToName(word uint128.Uint128) (string, error) {
	var chars []byte
	for num := word; !num.IsZero(); num = num.Rsh(6) {
		if len(chars) == MaxNameLen {
			return "", fmt.Errorf("number %s is not a name", word)
		}
		chars = append(chars, nameAlphabet[num.Lo&0x3f])
	}
	for i, j := 0, len(chars)-1; i < j; i, j = i+1, j-1 {
		chars[i], chars[j] = chars[j], chars[i]
	}
	name := string(chars)
	if !ValidName(name) {
		return "", fmt.Errorf("number %s is not a name", word)
	}
	return name, nil
}
