package sms

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Provider sends a single SMS. Receipts and reminders go through here.
type Provider interface {
	SendSMS(phone, message string) error
}

// Fast2SMSProvider sends through the Fast2SMS quick route (India).
type Fast2SMSProvider struct {
	APIKey string
	client *http.Client
}

func NewFast2SMSProvider(apiKey string) *Fast2SMSProvider {
	return &Fast2SMSProvider{
		APIKey: apiKey,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *Fast2SMSProvider) SendSMS(phone, message string) error {
	apiURL := fmt.Sprintf(
		"https://www.fast2sms.com/dev/bulkV2?authorization=%s&route=q&message=%s&language=english&flash=0&numbers=%s",
		url.QueryEscape(p.APIKey),
		url.QueryEscape(message),
		url.QueryEscape(phone),
	)

	resp, err := p.client.Get(apiURL)
	if err != nil {
		return fmt.Errorf("sms request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sms API error (status %d): %s", resp.StatusCode, string(body))
	}
	if strings.Contains(string(body), `"return":false`) {
		return fmt.Errorf("sms API error: %s", string(body))
	}
	return nil
}

// MockProvider logs messages instead of sending them. Used in development
// and when no API key is configured.
type MockProvider struct{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (p *MockProvider) SendSMS(phone, message string) error {
	log.Printf("[SMS] (mock) to %s: %s", phone, message)
	return nil
}
