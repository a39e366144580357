package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 64 hex chars = 32 bytes = valid AES-256 key
const testKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func TestNewAESGCMService_ValidKey(t *testing.T) {
	svc, err := NewAESGCMService(testKey)
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestNewAESGCMService_InvalidKey(t *testing.T) {
	tests := []struct {
		name   string
		hexKey string
	}{
		{"not hex", "zzzz"},
		{"too short (31 bytes)", "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcd"},
		{"too long (33 bytes)", "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef00"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := NewAESGCMService(tt.hexKey)
			assert.Error(t, err)
			assert.Nil(t, svc)
		})
	}
}

func TestEncryptDecrypt_Roundtrip(t *testing.T) {
	svc, err := NewAESGCMService(testKey)
	require.NoError(t, err)

	plaintext := "ya29.a0AfH6SMBx-access-token"

	ciphertext, err := svc.Encrypt(plaintext)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, ciphertext)

	decrypted, err := svc.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestEncrypt_UniqueNonces(t *testing.T) {
	svc, err := NewAESGCMService(testKey)
	require.NoError(t, err)

	first, err := svc.Encrypt("same-token")
	require.NoError(t, err)
	second, err := svc.Encrypt("same-token")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestDecrypt_WrongKey(t *testing.T) {
	svc, err := NewAESGCMService(testKey)
	require.NoError(t, err)

	ciphertext, err := svc.Encrypt("secret")
	require.NoError(t, err)

	otherKey := "fedcba9876543210fedcba9876543210fedcba9876543210fedcba9876543210"
	other, err := NewAESGCMService(otherKey)
	require.NoError(t, err)

	_, err = other.Decrypt(ciphertext)
	assert.Error(t, err)
}

func TestDecrypt_Malformed(t *testing.T) {
	svc, err := NewAESGCMService(testKey)
	require.NoError(t, err)

	_, err = svc.Decrypt("not-hex!!")
	assert.Error(t, err)

	_, err = svc.Decrypt("abcd")
	assert.Error(t, err)
}

func TestNoopService_PassThrough(t *testing.T) {
	svc := NoopService{}

	out, err := svc.Encrypt("plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", out)

	out, err = svc.Decrypt("plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", out)
}
