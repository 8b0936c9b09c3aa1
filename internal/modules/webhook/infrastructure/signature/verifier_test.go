package signature

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"events":[{"type":"message"}]}`)
	secret := "channel-secret"
	sig := Sign(body, secret)

	assert.True(t, VerifySignature(body, sig, secret))
	assert.False(t, VerifySignature(body, sig, "other-secret"))
	assert.False(t, VerifySignature(body, "", secret))
	assert.False(t, VerifySignature(body, sig, ""))
	assert.False(t, VerifySignature(nil, sig, secret))
}

func TestVerifySignature_AnySingleByteChangeFails(t *testing.T) {
	body := []byte(`{"destination":"U1","events":[]}`)
	secret := "s3cr3t"
	sig := Sign(body, secret)

	for i := range body {
		mutated := append([]byte(nil), body...)
		mutated[i] ^= 0x01
		assert.False(t, VerifySignature(mutated, sig, secret), "byte %d", i)
	}
}

func TestVerifier_Skip(t *testing.T) {
	assert.True(t, NewVerifier(true).Verify([]byte("x"), "bad", ""))
	assert.False(t, NewVerifier(false).Verify([]byte("x"), "bad", "s"))
}
