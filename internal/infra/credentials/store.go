// Package credentials keeps integration secrets in the integration_tokens
// table so operators can rotate them without a redeploy.
package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"taskflow/internal/infra"
	"taskflow/internal/sqlinline"
)

const ProviderNotifyWebhook = "notify_webhook"

// Webhook is the stored notification webhook endpoint. Secret signs payloads
// and may be empty.
type Webhook struct {
	URL    string
	Secret string
}

// Configured reports whether a delivery URL is present.
func (w Webhook) Configured() bool { return w.URL != "" }

type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

// NotifyWebhook returns the stored webhook, or a zero Webhook when none is set.
func (s *Store) NotifyWebhook(ctx context.Context) (Webhook, error) {
	token, props, err := s.load(ctx, ProviderNotifyWebhook)
	if err != nil {
		return Webhook{}, err
	}
	u, _ := props["url"].(string)
	return Webhook{URL: strings.TrimSpace(u), Secret: token}, nil
}

// SetNotifyWebhook stores the webhook endpoint and its signing secret.
func (s *Store) SetNotifyWebhook(ctx context.Context, rawURL, secret string) error {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return errors.New("webhook url is required")
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("invalid webhook url %q", rawURL)
	}
	return s.upsert(ctx, ProviderNotifyWebhook, strings.TrimSpace(secret), map[string]any{"url": rawURL})
}

// ClearNotifyWebhook removes the stored webhook.
func (s *Store) ClearNotifyWebhook(ctx context.Context) error {
	_, err := s.sql.Exec(ctx, sqlinline.QDeleteIntegrationToken, ProviderNotifyWebhook)
	return err
}

func (s *Store) load(ctx context.Context, provider string) (string, map[string]any, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QSelectIntegrationToken, provider)
	var (
		token string
		raw   []byte
	)
	if err := row.Scan(&token, &raw); err != nil {
		if infra.IsNoRows(err) {
			return "", nil, nil
		}
		return "", nil, err
	}
	props := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &props); err != nil {
			return "", nil, fmt.Errorf("decode %s properties: %w", provider, err)
		}
	}
	return strings.TrimSpace(token), props, nil
}

func (s *Store) upsert(ctx context.Context, provider, token string, props map[string]any) error {
	payload := props
	if payload == nil {
		payload = map[string]any{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = s.sql.Exec(ctx, sqlinline.QUpsertIntegrationToken, provider, token, raw)
	return err
}
