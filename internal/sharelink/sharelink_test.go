package sharelink

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMintVerifyRoundTrip(t *testing.T) {
	signer, err := NewSigner([]byte("test-secret"), time.Hour)
	require.NoError(t, err)

	token, err := signer.Mint("camp-123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	campaignID, err := signer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "camp-123", campaignID)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	signer, err := NewSigner([]byte("secret-a"), time.Hour)
	require.NoError(t, err)
	other, err := NewSigner([]byte("secret-b"), time.Hour)
	require.NoError(t, err)

	token, err := signer.Mint("camp-123")
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	signer, err := NewSigner([]byte("test-secret"), time.Nanosecond)
	require.NoError(t, err)

	token, err := signer.Mint("camp-123")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	_, err = signer.Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsEmptyToken(t *testing.T) {
	signer, err := NewSigner([]byte("test-secret"), time.Hour)
	require.NoError(t, err)

	_, err = signer.Verify("")
	assert.Error(t, err)
}

func TestNewSignerRequiresSecret(t *testing.T) {
	_, err := NewSigner(nil, time.Hour)
	assert.Error(t, err)
}
