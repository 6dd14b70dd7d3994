package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShareSignerRoundTrip(t *testing.T) {
	signer := NewShareSigner("secret", time.Hour)

	token, expiresAt, err := signer.Sign("CA-MA-UK-26-001", "shared/CA-MA-UK-26-001-case-file.pdf")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	subject, path, parsedExpiry, err := signer.Verify(token, false)
	require.NoError(t, err)
	assert.Equal(t, "CA-MA-UK-26-001", subject)
	assert.Equal(t, "shared/CA-MA-UK-26-001-case-file.pdf", path)
	assert.WithinDuration(t, expiresAt, parsedExpiry, time.Second)
}

func TestShareSignerRejectsTampering(t *testing.T) {
	signer := NewShareSigner("secret", time.Hour)

	token, _, err := signer.Sign("CA-MA-UK-26-001", "shared/file.pdf")
	require.NoError(t, err)

	encoded, signature, _ := strings.Cut(token, ".")
	_, _, _, err = signer.Verify(encoded+"x."+signature, false)
	assert.Error(t, err)

	other := NewShareSigner("different-secret", time.Hour)
	_, _, _, err = other.Verify(token, false)
	assert.Error(t, err)
}

func TestShareSignerExpiry(t *testing.T) {
	signer := NewShareSigner("secret", 10*time.Millisecond)

	token, _, err := signer.Sign("CA-MA-UK-26-001", "shared/file.pdf")
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)

	_, _, _, err = signer.Verify(token, false)
	assert.Error(t, err)

	subject, path, _, err := signer.Verify(token, true)
	require.NoError(t, err)
	assert.Equal(t, "CA-MA-UK-26-001", subject)
	assert.Equal(t, "shared/file.pdf", path)
}

func TestShareSignerRequiresSubjectAndPath(t *testing.T) {
	signer := NewShareSigner("secret", time.Hour)

	_, _, err := signer.Sign("", "shared/file.pdf")
	assert.Error(t, err)
	_, _, err = signer.Sign("CA-MA-UK-26-001", "")
	assert.Error(t, err)
}
