package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hireflow/onboarding/internal/config"
	"github.com/hireflow/onboarding/internal/logging"
	"github.com/hireflow/onboarding/internal/models"
	"github.com/hireflow/onboarding/internal/redisclient"
	"github.com/hireflow/onboarding/internal/utils/httpclient"
	"go.uber.org/zap"
)

type authResponse struct {
	Token      string `json:"token"`
	Expiration int64  `json:"expiration"`
}

type sendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

type errorResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

// MailGatewayDispatcher delivers communications through an internal
// HTTP mail gateway. The gateway token is cached in Redis until shortly
// before it expires.
type MailGatewayDispatcher struct {
	cfg   *config.Config
	redis *redisclient.Client
}

// NewMailGatewayDispatcher creates a dispatcher for the configured
// gateway.
func NewMailGatewayDispatcher(cfg *config.Config, redis *redisclient.Client) *MailGatewayDispatcher {
	return &MailGatewayDispatcher{cfg: cfg, redis: redis}
}

// getAuthToken gets a mail gateway token, using Redis for caching
func (d *MailGatewayDispatcher) getAuthToken(ctx context.Context) (string, error) {
	logger := logging.Logger.With(zap.String("operation", "get_auth_token"))

	cacheKey := "mailgateway:token"
	if d.redis != nil {
		token, err := d.redis.Get(ctx, cacheKey).Result()
		if err == nil {
			return token, nil
		}
	}

	authURL := fmt.Sprintf("%s/auth/login", d.cfg.MailGatewayBaseURL)
	authBody := map[string]string{
		"username": d.cfg.MailGatewayUsername,
		"password": d.cfg.MailGatewayPassword,
	}

	jsonBody, err := json.Marshal(authBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal auth request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, authURL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create auth request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	client := httpclient.GetGlobalPool().Get()
	defer httpclient.GetGlobalPool().Put(client)

	resp, err := client.Do(req)
	if err != nil {
		logger.Error("failed to send auth request", zap.Error(err))
		return "", fmt.Errorf("failed to send auth request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read auth response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("auth request failed with status: %d", resp.StatusCode)
	}

	var authResp authResponse
	if err := json.Unmarshal(body, &authResp); err != nil {
		return "", fmt.Errorf("failed to decode auth response: %w", err)
	}

	// Cache the token until one minute before it expires.
	if d.redis != nil {
		expiresAt := time.Unix(0, authResp.Expiration*int64(time.Millisecond))
		ttl := time.Until(expiresAt) - time.Minute
		if ttl > 0 {
			if err := d.redis.Set(ctx, cacheKey, authResp.Token, ttl).Err(); err != nil {
				logger.Warn("failed to cache mail gateway token", zap.Error(err))
			}
		}
	}

	return authResp.Token, nil
}

// Dispatch renders the communication and posts it to the gateway. The
// caller only learns success or failure.
func (d *MailGatewayDispatcher) Dispatch(ctx context.Context, msg models.Communication) error {
	logger := logging.Logger.With(
		zap.String("candidate_id", msg.CandidateID),
		zap.String("kind", string(msg.Kind)),
	)

	if !msg.Kind.Valid() {
		return fmt.Errorf("%w: %q", models.ErrInvalidKind, msg.Kind)
	}
	if msg.To == "" {
		return models.ErrMissingContact
	}

	html, err := RenderBody(msg)
	if err != nil {
		return err
	}

	token, err := d.getAuthToken(ctx)
	if err != nil {
		return fmt.Errorf("failed to get auth token: %w", err)
	}

	sendReq := sendRequest{
		From:    d.cfg.MailFromAddress,
		To:      msg.To,
		Subject: Subject(msg.Kind),
		HTML:    html,
	}

	jsonBody, err := json.Marshal(sendReq)
	if err != nil {
		return fmt.Errorf("failed to marshal send request: %w", err)
	}

	url := fmt.Sprintf("%s/messages/send", d.cfg.MailGatewayBaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create send request: %w", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	req.Header.Set("Content-Type", "application/json")

	client := httpclient.GetGlobalPool().Get()
	defer httpclient.GetGlobalPool().Put(client)

	resp, err := client.Do(req)
	if err != nil {
		logger.Error("failed to send message request", zap.Error(err))
		return fmt.Errorf("failed to send message request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var errResp errorResponse
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
			logger.Error("message request failed",
				zap.Int("status_code", resp.StatusCode),
				zap.String("error_message", errResp.Message))
			return fmt.Errorf("message request failed: %s", errResp.Message)
		}
		logger.Error("message request failed", zap.Int("status_code", resp.StatusCode))
		return fmt.Errorf("message request failed with status: %d", resp.StatusCode)
	}

	logger.Info("communication dispatched", zap.String("to", msg.To))
	return nil
}
