package channel

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"net/url"
	"testing"
)

func sign(token, requestURL string, params url.Values) string {
	mac := hmac.New(sha1.New, []byte(token))
	mac.Write([]byte(requestURL))
	// Params written in sorted key order, matching the provider spec.
	for _, k := range []string{"Body", "From", "NumMedia"} {
		if vs, ok := params[k]; ok {
			for _, v := range vs {
				mac.Write([]byte(k))
				mac.Write([]byte(v))
			}
		}
	}
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestVerifySignatureAccepts(t *testing.T) {
	params := url.Values{}
	params.Set("From", "whatsapp:+911234567890")
	params.Set("Body", "hi")
	params.Set("NumMedia", "0")
	reqURL := "https://nyaya.example/webhook/whatsapp"
	sig := sign("secret-token", reqURL, params)

	if err := VerifySignature("secret-token", sig, reqURL, params); err != nil {
		t.Fatalf("expected valid signature, got %v", err)
	}
}

func TestVerifySignatureRejects(t *testing.T) {
	params := url.Values{}
	params.Set("From", "whatsapp:+911234567890")
	params.Set("Body", "hi")
	reqURL := "https://nyaya.example/webhook/whatsapp"
	sig := sign("secret-token", reqURL, params)

	if err := VerifySignature("secret-token", "", reqURL, params); err != ErrMissingSignature {
		t.Fatalf("expected ErrMissingSignature, got %v", err)
	}
	if err := VerifySignature("other-token", sig, reqURL, params); err != ErrInvalidSignature {
		t.Fatalf("expected ErrInvalidSignature for wrong token, got %v", err)
	}

	params.Set("Body", "tampered")
	if err := VerifySignature("secret-token", sig, reqURL, params); err != ErrInvalidSignature {
		t.Fatalf("expected ErrInvalidSignature for tampered body, got %v", err)
	}
}
