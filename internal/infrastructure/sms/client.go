// Package sms envía mensajes de texto a través de un gateway HTTP.
package sms

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/StantonMatt/coab-platform/internal/application/ports"
	"github.com/StantonMatt/coab-platform/pkg/config"
)

var _ ports.SMSSender = (*Client)(nil)

type sendRequest struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Message string `json:"message"`
}

type sendResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Client cliente del gateway de SMS.
type Client struct {
	http   *resty.Client
	sender string
}

// NewClient construye el cliente con reintentos ante errores de red y 5xx.
func NewClient(cfg config.SMSConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	http := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(timeout).
		SetAuthToken(cfg.Token).
		SetHeader("Accept", "application/json").
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500
		})
	return &Client{http: http, sender: cfg.Sender}
}

// Send envía el mensaje al teléfono indicado.
func (c *Client) Send(ctx context.Context, telefono, mensaje string) error {
	var (
		ok   sendResponse
		fail errorResponse
	)
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(sendRequest{To: NormalizarTelefono(telefono), From: c.sender, Message: mensaje}).
		SetResult(&ok).
		SetError(&fail).
		Post("/messages")
	if err != nil {
		return fmt.Errorf("sms: envío: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("sms: gateway respondió %d: %s", resp.StatusCode(), fail.Error)
	}
	return nil
}

// NormalizarTelefono formato E.164 chileno: "9 8765 4321" → "+56987654321".
func NormalizarTelefono(tel string) string {
	var digits strings.Builder
	for _, r := range tel {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	switch {
	case strings.HasPrefix(d, "56") && len(d) == 11:
		return "+" + d
	case len(d) == 9:
		return "+56" + d
	default:
		return "+" + strings.TrimPrefix(d, "+")
	}
}
