package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignedURLSignerGenerateAndParse(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, expiresAt, err := signer.Generate("material-1", "materials/notes.pdf")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.False(t, expiresAt.IsZero())

	materialID, path, parsedExpiry, err := signer.Parse(token, false)
	require.NoError(t, err)
	require.Equal(t, "material-1", materialID)
	require.Equal(t, "materials/notes.pdf", path)
	require.WithinDuration(t, expiresAt, parsedExpiry, time.Second)
}

func TestSignedURLSignerExpired(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Millisecond*10)
	token, _, err := signer.Generate("material-1", "materials/notes.pdf")
	require.NoError(t, err)
	time.Sleep(time.Millisecond * 20)

	_, _, _, err = signer.Parse(token, false)
	require.Error(t, err)

	materialID, path, _, err := signer.Parse(token, true)
	require.NoError(t, err)
	require.Equal(t, "material-1", materialID)
	require.Equal(t, "materials/notes.pdf", path)
}

func TestSignedURLSignerRejectsTampering(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, _, err := signer.Generate("material-1", "materials/notes.pdf")
	require.NoError(t, err)

	// Re-point the token at another material without re-signing.
	forged := "material-2" + token[len("material-1"):]
	_, _, _, err = signer.Parse(forged, false)
	require.Error(t, err)

	// A token signed with a different secret must not validate.
	_, _, _, err = NewSignedURLSigner("different", time.Hour).Parse(token, false)
	require.Error(t, err)
}
