package room

import (
	"crypto/rand"
	"errors"
)

// codeAlphabet omits visually ambiguous characters (0/O, 1/I).
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// maxCodeAttempts bounds the collision retry loop. With 32^4 possible codes
// the cap is unreachable in practice; it exists so a pathological registry
// cannot spin the generator forever.
const maxCodeAttempts = 1000

var ErrCodesExhausted = errors.New("room code space exhausted")

// GenerateCode returns an uppercase code of the given length for which
// inUse reports false.
func GenerateCode(length int, inUse func(string) bool) (string, error) {
	buf := make([]byte, length)
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for i := range buf {
			buf[i] = codeAlphabet[int(buf[i])%len(codeAlphabet)]
		}
		code := string(buf)
		if !inUse(code) {
			return code, nil
		}
	}
	return "", ErrCodesExhausted
}
