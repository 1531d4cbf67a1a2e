package ton

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client consulta o ledger TON por uma API HTTP estilo toncenter.
// Uma única instância de vida longa atende todas as verificações de depósito;
// cada chamada é cancelável pelo contexto do chamador.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

// InboundTransfer é uma transferência recebida na carteira de depósito.
type InboundTransfer struct {
	AmountNano int64
	Comment    string
	Utime      int64
}

// resposta estilo toncenter de getTransactions
type txListResponse struct {
	OK     bool `json:"ok"`
	Result []struct {
		Utime int64 `json:"utime"`
		InMsg struct {
			Value   string `json:"value"` // nanoton, como string decimal
			Message string `json:"message"`
		} `json:"in_msg"`
	} `json:"result"`
}

// FindInbound varre as últimas transações da carteira procurando uma
// transferência cujo comentário seja exatamente o token de correlação.
// Retorna (nil, nil) quando nenhuma bate.
func (c *Client) FindInbound(ctx context.Context, address, comment string) (*InboundTransfer, error) {
	q := url.Values{}
	q.Set("address", address)
	q.Set("limit", "50")
	if c.apiKey != "" {
		q.Set("api_key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/getTransactions?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return nil, fmt.Errorf("ton api http %d", res.StatusCode)
	}

	var out txListResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, err
	}
	if !out.OK {
		return nil, fmt.Errorf("ton api returned ok=false")
	}

	for _, tx := range out.Result {
		if tx.InMsg.Message != comment {
			continue
		}
		nano, err := strconv.ParseInt(tx.InMsg.Value, 10, 64)
		if err != nil {
			continue // valor ilegível, segue varrendo
		}
		return &InboundTransfer{AmountNano: nano, Comment: comment, Utime: tx.Utime}, nil
	}
	return nil, nil
}
