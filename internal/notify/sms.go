package notify

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/campuspass/outpass-server/internal/util"
)

// GatewaySMSSender delivers messages through a form-encoded SMS gateway API.
type GatewaySMSSender struct {
	url    string
	apiKey string
	client *http.Client
}

func NewGatewaySMSSender(gatewayURL, apiKey string) *GatewaySMSSender {
	return &GatewaySMSSender{
		url:    gatewayURL,
		apiKey: apiKey,
		client: &http.Client{},
	}
}

func (s *GatewaySMSSender) Send(ctx context.Context, phone, message string) SMSResult {
	if !util.IsValidPhone(phone) {
		log.Warn().Msg("sms: invalid phone number, not attempting send")
		return SMSResult{Success: false, Message: "invalid phone number"}
	}

	form := url.Values{}
	form.Set("authorization", s.apiKey)
	form.Set("numbers", phone)
	form.Set("message", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, strings.NewReader(form.Encode()))
	if err != nil {
		log.Error().Err(err).Msg("sms: build request")
		return SMSResult{Success: false, Message: "failed to build request"}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		log.Warn().Err(err).Msg("sms: send failed")
		return SMSResult{Success: false, Message: "gateway unreachable"}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.Warn().Int("status", resp.StatusCode).Str("body", string(body)).Msg("sms: gateway rejected")
		return SMSResult{Success: false, Message: "gateway rejected message"}
	}

	log.Debug().Msg("sms sent")
	return SMSResult{Success: true, Message: "sent"}
}

// NopSMSSender is used when no SMS gateway is configured.
type NopSMSSender struct{}

func (NopSMSSender) Send(ctx context.Context, phone, message string) SMSResult {
	log.Debug().Msg("sms disabled, dropping message")
	return SMSResult{Success: false, Message: "sms disabled"}
}
