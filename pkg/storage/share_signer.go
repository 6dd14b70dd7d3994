package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ShareSigner mints and verifies the HMAC tokens behind shareable export
// links. A token binds a subject (the student whose case file it is), the
// archived file path and an expiry, so a link cannot be replayed for a
// different file or after its window closes.
type ShareSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewShareSigner builds a signer. A non-positive TTL defaults to 24 hours.
func NewShareSigner(secret string, ttl time.Duration) *ShareSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ShareSigner{secret: []byte(secret), ttl: ttl}
}

// Sign returns a share token for the subject and archived path, plus its
// expiry time.
func (s *ShareSigner) Sign(subject, relPath string) (string, time.Time, error) {
	if subject == "" || relPath == "" {
		return "", time.Time{}, fmt.Errorf("subject and path required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("share signing secret missing")
	}
	expiresAt := time.Now().Add(s.ttl)
	payload := strings.Join([]string{subject, strconv.FormatInt(expiresAt.Unix(), 10), relPath}, "\n")
	encoded := base64.RawURLEncoding.EncodeToString([]byte(payload))
	return encoded + "." + s.sign(encoded), expiresAt, nil
}

// Verify checks a token's signature and expiry and returns the embedded
// subject, path and expiry. Expired tokens pass when allowExpired is set;
// retention sweeps use that to resolve paths for files already past TTL.
func (s *ShareSigner) Verify(token string, allowExpired bool) (subject, relPath string, expiresAt time.Time, err error) {
	encoded, signature, ok := strings.Cut(token, ".")
	if !ok {
		return "", "", time.Time{}, fmt.Errorf("malformed share token")
	}
	if !hmac.Equal([]byte(s.sign(encoded)), []byte(signature)) {
		return "", "", time.Time{}, fmt.Errorf("share token signature mismatch")
	}

	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("decode share token: %w", err)
	}
	fields := strings.SplitN(string(raw), "\n", 3)
	if len(fields) != 3 {
		return "", "", time.Time{}, fmt.Errorf("malformed share token")
	}
	unix, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("malformed share token expiry")
	}
	expiresAt = time.Unix(unix, 0)
	if !allowExpired && time.Now().After(expiresAt) {
		return "", "", time.Time{}, fmt.Errorf("share token expired")
	}
	return fields[0], fields[2], expiresAt, nil
}

func (s *ShareSigner) sign(encoded string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(encoded))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
