package utils

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
)

const (
	base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"
	upperAlphanum  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// RandomHex returns n random bytes hex encoded (2n characters).
func RandomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// RandomString draws n characters uniformly from alphabet.
func RandomString(n int, alphabet string) (string, error) {
	out := make([]byte, n)
	max := big.NewInt(int64(len(alphabet)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = alphabet[idx.Int64()]
	}
	return string(out), nil
}

// RandomBase58 returns n characters of the Bitcoin base58 alphabet.
func RandomBase58(n int) (string, error) {
	return RandomString(n, base58Alphabet)
}

// RandomUpperAlphanum returns n characters from A-Z and 0-9.
func RandomUpperAlphanum(n int) (string, error) {
	return RandomString(n, upperAlphanum)
}

// RandomInt returns a uniform integer in [min, max).
func RandomInt(min, max int64) (int64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(max-min))
	if err != nil {
		return 0, err
	}
	return min + n.Int64(), nil
}
