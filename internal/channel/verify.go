package channel

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"errors"
	"net/url"
	"sort"
)

var (
	ErrMissingSignature = errors.New("missing channel signature")
	ErrInvalidSignature = errors.New("invalid channel signature")
)

// VerifySignature validates the provider's webhook signature: an HMAC
// SHA-1 over the full request URL followed by the sorted form
// parameters concatenated as key+value, base64 encoded.
func VerifySignature(authToken, signature, requestURL string, params url.Values) error {
	if signature == "" {
		return ErrMissingSignature
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	mac := hmac.New(sha1.New, []byte(authToken))
	_, _ = mac.Write([]byte(requestURL))
	for _, k := range keys {
		for _, v := range params[k] {
			_, _ = mac.Write([]byte(k))
			_, _ = mac.Write([]byte(v))
		}
	}
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidSignature
	}
	return nil
}
