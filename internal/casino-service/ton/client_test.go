package ton

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const txPage = `{
	"ok": true,
	"result": [
		{"utime": 1700000100, "in_msg": {"value": "500000000", "message": "gift_other"}},
		{"utime": 1700000200, "in_msg": {"value": "2500000000", "message": "gift_match"}},
		{"utime": 1700000300, "in_msg": {"value": "not-a-number", "message": "gift_broken"}}
	]
}`

func TestFindInboundMatchesComment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/getTransactions" {
			t.Fatalf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("address"); got != "UQwallet" {
			t.Fatalf("address = %q", got)
		}
		if got := r.URL.Query().Get("limit"); got != "50" {
			t.Fatalf("limit = %q", got)
		}
		_, _ = w.Write([]byte(txPage))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	tr, err := c.FindInbound(context.Background(), "UQwallet", "gift_match")
	if err != nil {
		t.Fatalf("FindInbound: %v", err)
	}
	if tr == nil {
		t.Fatal("transferência não encontrada")
	}
	if tr.AmountNano != 2_500_000_000 || tr.Utime != 1700000200 {
		t.Fatalf("transfer = %+v", tr)
	}
}

func TestFindInboundNoMatchReturnsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(txPage))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	tr, err := c.FindInbound(context.Background(), "UQwallet", "gift_missing")
	if err != nil {
		t.Fatalf("FindInbound: %v", err)
	}
	if tr != nil {
		t.Fatalf("esperava nil, veio %+v", tr)
	}
}

func TestFindInboundAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok": false}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	if _, err := c.FindInbound(context.Background(), "UQwallet", "gift_x"); err == nil {
		t.Fatal("esperava erro para ok=false")
	}
}
