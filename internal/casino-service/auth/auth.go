package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/url"
	"sort"
	"strings"
)

var ErrInvalid = errors.New("invalid identity payload")

// Identity é o jogador autenticado extraído do header de integridade.
type Identity struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
}

// Verifier valida o payload de identidade assinado que a plataforma host
// injeta nos clientes (formato initData: query string com campo hash HMAC).
// É uma checagem one-shot: ou o payload inteiro é íntegro, ou 401.
type Verifier struct {
	secretKey []byte
}

// NewVerifier deriva a chave de verificação do segredo do bot,
// HMAC("WebAppData", secret), como definido pela plataforma host.
func NewVerifier(secret string) *Verifier {
	mac := hmac.New(sha256.New, []byte("WebAppData"))
	mac.Write([]byte(secret))
	return &Verifier{secretKey: mac.Sum(nil)}
}

// Verify checa a assinatura e devolve a identidade embutida no campo user.
func (v *Verifier) Verify(data string) (Identity, error) {
	values, err := url.ParseQuery(data)
	if err != nil {
		return Identity{}, ErrInvalid
	}

	received := values.Get("hash")
	if received == "" {
		return Identity{}, ErrInvalid
	}
	values.Del("hash")

	if !hmac.Equal([]byte(checksum(v.secretKey, values)), []byte(received)) {
		return Identity{}, ErrInvalid
	}

	var id Identity
	if err := json.Unmarshal([]byte(values.Get("user")), &id); err != nil || id.ID == 0 {
		return Identity{}, ErrInvalid
	}
	return id, nil
}

// checksum monta a data-check-string (chaves ordenadas, k=v por linha) e assina.
func checksum(key []byte, values url.Values) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+values.Get(k))
	}

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(strings.Join(parts, "\n")))
	return hex.EncodeToString(mac.Sum(nil))
}
