package utils

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	encoded, err := EncryptRecipient("someone@example.com")
	require.NoError(t, err)
	assert.NotContains(t, encoded, "someone")

	plain, err := DecryptRecipient(encoded)
	require.NoError(t, err)
	assert.Equal(t, "someone@example.com", plain)
}

func TestEncryptNonceVaries(t *testing.T) {
	a, err := EncryptRecipient("same input")
	require.NoError(t, err)
	b, err := EncryptRecipient("same input")
	require.NoError(t, err)

	// nonce 随机，同一明文两次加密产生不同密文
	assert.NotEqual(t, a, b)
}

func TestDecryptRejectsGarbage(t *testing.T) {
	_, err := DecryptRecipient("not base64 at all %%%")
	assert.Error(t, err)

	// 合法 base64 但长度不足一个 nonce
	short := base64.StdEncoding.EncodeToString([]byte("tiny"))
	_, err = DecryptRecipient(short)
	assert.Error(t, err)
}

func TestDecryptRejectsTamperedCipherText(t *testing.T) {
	encoded, err := EncryptRecipient("someone@example.com")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xff

	_, err = DecryptRecipient(base64.StdEncoding.EncodeToString(raw))
	assert.Error(t, err)
}

func TestHashEmailDeterministic(t *testing.T) {
	a := HashEmail("someone@example.com")
	b := HashEmail("someone@example.com")
	c := HashEmail("other@example.com")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestValidateEmail(t *testing.T) {
	valid := []string{
		"a@b.co",
		"user.name+tag@example.com",
		"UPPER@EXAMPLE.COM",
	}
	for _, email := range valid {
		assert.True(t, ValidateEmail(email), email)
	}

	invalid := []string{
		"",
		"plainstring",
		"@example.com",
		"user@",
		"user@host",
		"user @example.com",
	}
	for _, email := range invalid {
		assert.False(t, ValidateEmail(email), email)
	}
}
