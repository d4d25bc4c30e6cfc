// internal/models/signature_link_test.go
package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSignatureLinkExpired(t *testing.T) {
	now := time.Now()

	link := SignatureLink{ExpiresAt: now.Add(time.Hour)}
	assert.False(t, link.Expired(now))

	link.ExpiresAt = now.Add(-time.Minute)
	assert.True(t, link.Expired(now))
}

func TestSignatureLinkUsable(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)

	tests := []struct {
		name string
		link SignatureLink
		want bool
	}{
		{"pending and alive", SignatureLink{Status: LinkStatusPendiente, ExpiresAt: future}, true},
		{"viewed and alive", SignatureLink{Status: LinkStatusVisualizado, ExpiresAt: future}, true},
		{"completed", SignatureLink{Status: LinkStatusCompletado, ExpiresAt: future}, false},
		{"revoked", SignatureLink{Status: LinkStatusRevocado, ExpiresAt: future}, false},
		{"pending but expired", SignatureLink{Status: LinkStatusPendiente, ExpiresAt: now.Add(-time.Hour)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.link.Usable(now))
		})
	}
}
