package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// GatewayClient sends SMS through an HTTP SMS gateway. The gateway is
// expected to accept a JSON body and answer with a JSON status envelope.
type GatewayClient struct {
	baseURL    string
	apiKey     string
	senderName string
	client     *http.Client
	logger     zerolog.Logger
}

func NewGatewayClient(baseURL, apiKey, senderName string, logger zerolog.Logger) *GatewayClient {
	return &GatewayClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		senderName: senderName,
		client:     &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

type gatewaySendRequest struct {
	Recipient  string `json:"recipient"`
	SenderName string `json:"sender_name"`
	Message    string `json:"message"`
}

type gatewaySendResponse struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
	Msg    string `json:"msg"`
}

// SendSMS posts one message to the gateway. A non-zero gateway code is a
// delivery failure.
func (g *GatewayClient) SendSMS(ctx context.Context, to, body string) error {
	payload, err := json.Marshal(gatewaySendRequest{
		Recipient:  to,
		SenderName: g.senderName,
		Message:    body,
	})
	if err != nil {
		return fmt.Errorf("marshal sms payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/sms/send", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create sms request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("send sms request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read sms response: %w", err)
	}

	var out gatewaySendResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("parse sms response: %w", err)
	}
	if out.Code != 0 {
		g.logger.Warn().
			Int("code", out.Code).
			Str("status", out.Status).
			Str("msg", out.Msg).
			Msg("sms gateway rejected message")
		return fmt.Errorf("sms gateway: %s", out.Msg)
	}

	g.logger.Debug().Str("recipient", to).Msg("sms delivered to gateway")
	return nil
}
