package user

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const farazBaseURL = "https://edge.ippanel.com/v1"

// SMSSender отправляет OTP код на телефон
type SMSSender interface {
	SendOTP(ctx context.Context, phoneNumber, otpCode string) error
}

// FarazConfig - настройки провайдера Faraz SMS
type FarazConfig struct {
	APIKey       string
	SenderNumber string
	PatternCode  string
	PhoneBookID  string
}

type farazSender struct {
	cfg    FarazConfig
	client *http.Client
}

// NewFarazSender создаёт клиент Faraz SMS; все поля конфига обязательны
func NewFarazSender(cfg FarazConfig) (SMSSender, error) {
	if cfg.APIKey == "" || cfg.SenderNumber == "" || cfg.PatternCode == "" || cfg.PhoneBookID == "" {
		return nil, errors.New("faraz sms config is not properly set")
	}
	return &farazSender{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (s *farazSender) SendOTP(ctx context.Context, phoneNumber, otpCode string) error {
	body := map[string]interface{}{
		"sending_type": "pattern",
		"from_number":  s.cfg.SenderNumber,
		"code":         s.cfg.PatternCode,
		"recipients":   []string{phoneNumber},
		"params": map[string]string{
			"verification-code": otpCode,
		},
		"phonebook": map[string]interface{}{
			"id": s.cfg.PhoneBookID,
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, farazBaseURL+"/api/send", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", s.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("faraz sms request failed, status: %d", resp.StatusCode)
	}

	return nil
}
