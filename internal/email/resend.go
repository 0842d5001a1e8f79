package email

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ResendSender implements the Sender interface using the Resend API
type ResendSender struct {
	apiKey  string
	baseURL string
}

type resendEmail struct {
	From        string            `json:"from"`
	To          []string          `json:"to"`
	ReplyTo     string            `json:"reply_to,omitempty"`
	Subject     string            `json:"subject"`
	Text        string            `json:"text,omitempty"`
	HTML        string            `json:"html,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	Attachments []resendAttach    `json:"attachments,omitempty"`
}

type resendAttach struct {
	Filename    string `json:"filename"`
	Content     string `json:"content"`
	ContentType string `json:"content_type,omitempty"`
}

type resendResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	Message string `json:"message,omitempty"`
}

// NewResendSender creates a new Resend email sender
func NewResendSender(apiKey string) *ResendSender {
	return &ResendSender{
		apiKey:  apiKey,
		baseURL: "https://api.resend.com",
	}
}

// Send sends an email via Resend
func (r *ResendSender) Send(ctx context.Context, email *Email) (string, error) {
	payload := resendEmail{
		From:    email.From,
		To:      email.To,
		ReplyTo: email.ReplyTo,
		Subject: email.Subject,
		Text:    email.TextBody,
		HTML:    email.HTMLBody,
		Headers: email.Headers,
	}

	if len(email.Attachments) > 0 {
		attachments := make([]resendAttach, len(email.Attachments))
		for i, att := range email.Attachments {
			attachments[i] = resendAttach{
				Filename:    att.Filename,
				Content:     base64.StdEncoding.EncodeToString(att.Content),
				ContentType: att.ContentType,
			}
		}
		payload.Attachments = attachments
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", r.baseURL+"/emails", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result resendResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	return result.ID, nil
}
