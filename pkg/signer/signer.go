// Package signer turns logical payloads into transport-ready signed bodies
// and produces the fingerprint-consistency tokens that accompany
// login-adjacent calls. The signing key, the jazoest checksum and the
// breadcrumb HMAC reproduce currently-observed platform checks; they are
// fingerprint signals, not published algorithms.
package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/url"
	"sort"
	"strings"
	"time"
)

// SigKeyVersion is the version tag carried in every signed body.
const SigKeyVersion = "4"

// defaultSigKey is the captured HMAC key for request signing.
const defaultSigKey = "9193488027538fd3450b83b7d05286d4ca9599a0f7eeed90d8c85925698a05dc"

// breadcrumbKey is the captured HMAC key for user-breadcrumb generation.
const breadcrumbKey = "iN4$aGr0m"

// Signer computes the signature over a canonical payload. It is an
// injectable collaborator so alternate signing backends can be swapped in.
type Signer interface {
	Sign(data []byte) string
}

// HMACSigner signs with HMAC-SHA256 over a fixed key, hex-encoded.
type HMACSigner struct {
	key []byte
}

// NewHMACSigner returns a signer for the given key; empty uses the captured
// default key.
func NewHMACSigner(key string) *HMACSigner {
	if key == "" {
		key = defaultSigKey
	}
	return &HMACSigner{key: []byte(key)}
}

func (s *HMACSigner) Sign(data []byte) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write(data)
	return hex.EncodeToString(mac.Sum(nil))
}

// CanonicalJSON serializes a payload with sorted keys and no insignificant
// whitespace, so the signed bytes are deterministic.
func CanonicalJSON(payload map[string]string) []byte {
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		kb, _ := json.Marshal(k)
		vb, _ := json.Marshal(payload[k])
		b.Write(kb)
		b.WriteByte(':')
		b.Write(vb)
	}
	b.WriteByte('}')
	return []byte(b.String())
}

// SignedBody wraps a payload in the three-part signed envelope:
//
//	signed_body=<signature>&ig_sig_key_version=<n>&<url-encoded canonical payload>
//
// Exactly three &-joined components in this order; any party verifying
// authenticity relies on this structure. The third component is the
// URL-escaped canonical JSON, so it stays a single component.
func SignedBody(s Signer, payload map[string]string) string {
	canonical := CanonicalJSON(payload)
	sig := s.Sign(canonical)
	return "signed_body=" + url.QueryEscape(sig) +
		"&ig_sig_key_version=" + SigKeyVersion +
		"&" + url.QueryEscape(string(canonical))
}

// ParseSignedBody recovers the payload from a signed envelope, verifying the
// structure, not the signature; verifying signatures is the server's job.
func ParseSignedBody(body string) (map[string]string, error) {
	parts := strings.SplitN(body, "&", 3)
	if len(parts) != 3 {
		return nil, fmt.Errorf("signed body has %d components, want 3", len(parts))
	}
	if !strings.HasPrefix(parts[0], "signed_body=") {
		return nil, fmt.Errorf("signed body missing signed_body component")
	}
	if parts[1] != "ig_sig_key_version="+SigKeyVersion {
		return nil, fmt.Errorf("signed body has unexpected version component %q", parts[1])
	}
	canonical, err := url.QueryUnescape(parts[2])
	if err != nil {
		return nil, fmt.Errorf("signed body payload unescape: %w", err)
	}
	payload := map[string]string{}
	if err := json.Unmarshal([]byte(canonical), &payload); err != nil {
		return nil, fmt.Errorf("signed body payload decode: %w", err)
	}
	return payload, nil
}

// Jazoest computes the checksum token derived from the phone id: a fixed
// "2" marker followed by the decimal sum of the id's character codes.
func Jazoest(phoneID string) string {
	sum := 0
	for _, r := range phoneID {
		sum += int(r)
	}
	return fmt.Sprintf("2%d", sum)
}

// UserBreadcrumb emulates the typing-cadence token sent with comment and
// caption payloads: an HMAC over "<size> <elapsed-ms> <text-change-count>
// <unix-ms>", both parts base64, newline-terminated.
func UserBreadcrumb(size int) string {
	dt := time.Now().UnixMilli()
	elapsed := rand.Intn(1000) + 500 + size*(rand.Intn(1000)+500)
	count := size / (rand.Intn(3) + 3)
	if count < 1 {
		count = 1
	}
	data := fmt.Sprintf("%d %d %d %d", size, elapsed, count, dt)
	mac := hmac.New(sha256.New, []byte(breadcrumbKey))
	mac.Write([]byte(data))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)) + "\n" +
		base64.StdEncoding.EncodeToString([]byte(data)) + "\n"
}
