package tuya

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
)

const tokenPath = "/v1.0/token"

// TokenStore shares access tokens between client instances.
type TokenStore interface {
	Load(ctx context.Context, key string) (*oauth2.Token, bool, error)
	Save(ctx context.Context, key string, token *oauth2.Token) error
}

type tokenResult struct {
	AccessToken  string `json:"access_token"`
	ExpireTime   int64  `json:"expire_time"`
	RefreshToken string `json:"refresh_token"`
	UID          string `json:"uid"`
}

// tokenSource fetches simple-mode (grant_type=1) tokens, consulting the store first.
type tokenSource struct {
	client *Client
	store  TokenStore
	logger *slog.Logger
}

// Token implements oauth2.TokenSource.
func (s *tokenSource) Token() (*oauth2.Token, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.client.httpClient.Timeout+time.Second)
	defer cancel()

	key := s.client.accessID
	if s.store != nil {
		tok, ok, err := s.store.Load(ctx, key)
		if err != nil {
			s.logger.Warn("token store load failed", "error", err)
		} else if ok && tok.Valid() {
			return tok, nil
		}
	}

	tok, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	if s.store != nil {
		if err := s.store.Save(ctx, key, tok); err != nil {
			s.logger.Warn("token store save failed", "error", err)
		}
	}
	return tok, nil
}

func (s *tokenSource) fetch(ctx context.Context) (*oauth2.Token, error) {
	query := url.Values{"grant_type": {"1"}}
	body, err := s.client.do(ctx, http.MethodGet, tokenPath, query, "")
	if err != nil {
		return nil, fmt.Errorf("tuya token request failed: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode tuya token response: %w", err)
	}
	if env.rejected() {
		return nil, fmt.Errorf("tuya token rejected: code=%d msg=%s", env.Code, env.Msg)
	}
	var result tokenResult
	if err := json.Unmarshal(env.Result, &result); err != nil {
		return nil, fmt.Errorf("decode tuya token result: %w", err)
	}
	if result.AccessToken == "" {
		return nil, fmt.Errorf("tuya token response missing access_token")
	}

	s.logger.Debug("tuya access token issued", "expires_in", result.ExpireTime)
	return &oauth2.Token{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		Expiry:       s.client.now().Add(time.Duration(result.ExpireTime) * time.Second),
	}, nil
}
