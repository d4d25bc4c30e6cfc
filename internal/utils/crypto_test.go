// internal/utils/crypto_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateSignatureToken(t *testing.T) {
	token, err := GenerateSignatureToken()
	assert.NoError(t, err)
	assert.Len(t, token, 48)

	for _, r := range token {
		assert.True(t,
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'),
			"unexpected character %q in token", r)
	}
}

func TestGenerateSignatureTokenUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := GenerateSignatureToken()
		assert.NoError(t, err)
		assert.False(t, seen[token], "token collision")
		seen[token] = true
	}
}
