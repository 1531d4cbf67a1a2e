package auth

import (
	"net/url"
	"testing"
)

// signedPayload monta um payload initData válido para o segredo dado.
func signedPayload(secret string, user string) string {
	v := url.Values{}
	v.Set("user", user)
	v.Set("auth_date", "1700000000")

	verifier := NewVerifier(secret)
	v.Set("hash", checksum(verifier.secretKey, v))
	return v.Encode()
}

func TestVerifyValidPayload(t *testing.T) {
	data := signedPayload("bot-secret", `{"id":42,"username":"ana","first_name":"Ana"}`)

	id, err := NewVerifier("bot-secret").Verify(data)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if id.ID != 42 || id.Username != "ana" {
		t.Fatalf("unexpected identity: %+v", id)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	data := signedPayload("bot-secret", `{"id":42}`)

	if _, err := NewVerifier("other-secret").Verify(data); err != ErrInvalid {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestVerifyTamperedPayload(t *testing.T) {
	data := signedPayload("bot-secret", `{"id":42}`)
	tampered, _ := url.ParseQuery(data)
	tampered.Set("user", `{"id":999}`)

	if _, err := NewVerifier("bot-secret").Verify(tampered.Encode()); err != ErrInvalid {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestVerifyMissingHash(t *testing.T) {
	if _, err := NewVerifier("bot-secret").Verify("user=%7B%22id%22%3A1%7D"); err != ErrInvalid {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}
