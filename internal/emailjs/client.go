// Package emailjs is a small client for the EmailJS REST API.
package emailjs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const DefaultEndpoint = "https://api.emailjs.com/api/v1.0/email/send"

// ErrRejected is returned when the API answers with a non-2xx status.
var ErrRejected = errors.New("emailjs: send rejected")

type Client struct {
	Endpoint   string
	ServiceID  string
	TemplateID string
	PublicKey  string
	HTTPClient *http.Client
}

func NewClient(endpoint, serviceID, templateID, publicKey string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		Endpoint:   endpoint,
		ServiceID:  serviceID,
		TemplateID: templateID,
		PublicKey:  publicKey,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type sendRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	TemplateParams map[string]string `json:"template_params"`
}

// Send renders the configured template with params and delivers it.
func (c *Client) Send(ctx context.Context, params map[string]string) error {
	body, err := json.Marshal(sendRequest{
		ServiceID:      c.ServiceID,
		TemplateID:     c.TemplateID,
		UserID:         c.PublicKey,
		TemplateParams: params,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("emailjs: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, bytes.TrimSpace(msg))
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}
