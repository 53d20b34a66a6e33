package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignedURLSignerGenerateAndParse(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, expiresAt, err := signer.Generate("enr-1", "certificates/enr-1.pdf")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.False(t, expiresAt.IsZero())

	enrollmentID, path, parsedExpiry, err := signer.Parse(token)
	require.NoError(t, err)
	require.Equal(t, "enr-1", enrollmentID)
	require.Equal(t, "certificates/enr-1.pdf", path)
	require.WithinDuration(t, expiresAt, parsedExpiry, time.Second)
}

func TestSignedURLSignerExpired(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)

	// Build a correctly signed token whose expiry is already in the past.
	expired := time.Now().Add(-time.Minute).Unix()
	encodedPath := base64.RawURLEncoding.EncodeToString([]byte("certificates/enr-1.pdf"))
	payload := fmt.Sprintf("enr-1|%d|%s", expired, encodedPath)
	mac := hmac.New(sha256.New, signer.secret)
	_, _ = mac.Write([]byte(payload))
	token := strings.Join([]string{
		"enr-1",
		strconv.FormatInt(expired, 10),
		encodedPath,
		hex.EncodeToString(mac.Sum(nil)),
	}, ".")

	_, _, _, err := signer.Parse(token)
	require.ErrorContains(t, err, "expired")
}

func TestSignedURLSignerTamperedToken(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, _, err := signer.Generate("enr-1", "certificates/enr-1.pdf")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	parts[0] = "enr-2"
	_, _, _, err = signer.Parse(strings.Join(parts, "."))
	require.Error(t, err)
}

func TestSignedURLSignerWrongSecret(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, _, err := signer.Generate("enr-1", "certificates/enr-1.pdf")
	require.NoError(t, err)

	other := NewSignedURLSigner("other", time.Hour)
	_, _, _, err = other.Parse(token)
	require.Error(t, err)
}
