package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// GatewayPushSender posts notifications to an HTTP push gateway that fans
// out to the person's registered devices.
type GatewayPushSender struct {
	url    string
	apiKey string
	client *http.Client
}

func NewGatewayPushSender(url, apiKey string) *GatewayPushSender {
	return &GatewayPushSender{
		url:    url,
		apiKey: apiKey,
		client: &http.Client{},
	}
}

func (s *GatewayPushSender) Send(ctx context.Context, personID, title, body string, data map[string]string) bool {
	payload, err := json.Marshal(map[string]any{
		"personId": personID,
		"title":    title,
		"body":     body,
		"data":     data,
	})
	if err != nil {
		log.Error().Err(err).Str("personId", personID).Msg("push: marshal payload")
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		log.Error().Err(err).Str("personId", personID).Msg("push: build request")
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("personId", personID).Msg("push: send failed")
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warn().Int("status", resp.StatusCode).Str("personId", personID).Msg("push: gateway rejected")
		return false
	}

	log.Debug().Str("personId", personID).Msg("push sent")
	return true
}

// NopPushSender is used when no push gateway is configured.
type NopPushSender struct{}

func (NopPushSender) Send(ctx context.Context, personID, title, body string, data map[string]string) bool {
	log.Debug().Str("personId", personID).Str("title", title).Msg("push disabled, dropping notification")
	return false
}
