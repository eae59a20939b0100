package tokenstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"
	"golang.org/x/oauth2"

	"github.com/yanqian/meteo-tuya/internal/infra/tuya"
)

// ValkeyStore shares tokens across replicas through a Valkey-compatible database.
type ValkeyStore struct {
	client valkey.Client
	prefix string
	now    func() time.Time
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "tuya"
	}
	return &ValkeyStore{client: client, prefix: prefix, now: time.Now}
}

// Load implements tuya.TokenStore. A missing key or an expired token is a miss.
func (s *ValkeyStore) Load(ctx context.Context, key string) (*oauth2.Token, bool, error) {
	cmd := s.client.B().Get().Key(s.tokenKey(key)).Build()
	payload, err := s.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal([]byte(payload), &tok); err != nil {
		return nil, false, err
	}
	if hasExpired(&tok) {
		return nil, false, nil
	}
	return &tok, true, nil
}

// Save implements tuya.TokenStore. The key expires together with the token.
func (s *ValkeyStore) Save(ctx context.Context, key string, token *oauth2.Token) error {
	if token == nil {
		return nil
	}
	payload, err := json.Marshal(token)
	if err != nil {
		return err
	}
	builder := s.client.B().Set().Key(s.tokenKey(key)).Value(string(payload))
	var cmd valkey.Completed
	if !token.Expiry.IsZero() {
		ttl := token.Expiry.Sub(s.now())
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return s.client.Do(ctx, cmd).Error()
}

func (s *ValkeyStore) tokenKey(key string) string {
	return fmt.Sprintf("%s:token:%s", s.prefix, key)
}

var _ tuya.TokenStore = (*ValkeyStore)(nil)
