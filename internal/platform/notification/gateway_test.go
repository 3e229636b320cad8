package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func TestGatewayClientSendSMS(t *testing.T) {
	var got gatewaySendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sms/send" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(gatewaySendResponse{Code: 0, Status: "success"})
	}))
	defer srv.Close()

	g := NewGatewayClient(srv.URL, "test-key", "CLINIC", zerolog.Nop())
	if err := g.SendSMS(context.Background(), "+94771234567", "hello"); err != nil {
		t.Fatalf("SendSMS: %v", err)
	}
	if got.Recipient != "+94771234567" || got.Message != "hello" || got.SenderName != "CLINIC" {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestGatewayClientRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(gatewaySendResponse{Code: 42, Status: "error", Msg: "invalid number"})
	}))
	defer srv.Close()

	g := NewGatewayClient(srv.URL, "test-key", "CLINIC", zerolog.Nop())
	if err := g.SendSMS(context.Background(), "bad", "hello"); err == nil {
		t.Fatal("expected error on gateway rejection")
	}
}
