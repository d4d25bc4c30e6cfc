// internal/utils/crypto.go
package utils

import (
	"crypto/rand"
	"math/big"
)

const signatureTokenLength = 48

func GenerateRandomString(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)

	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		b[i] = charset[n.Int64()]
	}

	return string(b), nil
}

// GenerateSignatureToken returns the opaque credential embedded in
// /firmar/{token} URLs. It is the sole capability granting access to one
// sale's signing session, so it must stay cryptographically random.
func GenerateSignatureToken() (string, error) {
	return GenerateRandomString(signatureTokenLength)
}
