package store

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/contrib/rews"
	"github.com/surrealdb/surrealdb.go/pkg/connection"
	"github.com/surrealdb/surrealdb.go/pkg/connection/gorillaws"
	"github.com/surrealdb/surrealdb.go/pkg/logger"
	"github.com/surrealdb/surrealdb.go/surrealcbor"
)

func init() {
	// Force HTTP/1.1 for WSS connections. WebSocket upgrade requires
	// HTTP/1.1 semantics which fail under HTTP/2 ALPN negotiation.
	gorillaws.DefaultDialer.TLSClientConfig = &tls.Config{
		NextProtos: []string{"http/1.1"},
	}
}

// SurrealConfig holds SurrealDB connection configuration.
type SurrealConfig struct {
	URL       string
	Namespace string
	Database  string
	Username  string
	Password  string
	AuthLevel string // "root" or "database"
}

// SurrealKV is a KV backed by SurrealDB over an auto-reconnecting WebSocket.
// Values are stored JSON-encoded in a single `kv` table keyed by record id,
// which gives per-key independence without cross-lecture locking.
type SurrealKV struct {
	conn *rews.Connection[*gorillaws.Connection]
	db   *surrealdb.DB
}

var _ KV = (*SurrealKV)(nil)

// NewSurrealKV connects and authenticates a SurrealDB-backed KV store.
func NewSurrealKV(ctx context.Context, cfg SurrealConfig, log *slog.Logger) (*SurrealKV, error) {
	if log == nil {
		log = slog.Default()
	}
	sdkLogger := logger.New(log.Handler())

	// surrealcbor handles SurrealDB's custom CBOR tags.
	codec := surrealcbor.New()

	// gorillaws expects the base URL without the /rpc suffix; it appends it.
	baseURL := strings.TrimSuffix(cfg.URL, "/rpc")

	conn := rews.New(
		func(ctx context.Context) (*gorillaws.Connection, error) {
			ws := gorillaws.New(&connection.Config{
				BaseURL:     baseURL,
				Marshaler:   codec,
				Unmarshaler: codec,
				Logger:      sdkLogger,
			})
			return ws, nil
		},
		5*time.Second,
		codec,
		sdkLogger,
	)

	retryer := rews.NewExponentialBackoffRetryer()
	retryer.InitialDelay = 1 * time.Second
	retryer.MaxDelay = 30 * time.Second
	retryer.Multiplier = 2.0
	retryer.MaxRetries = 10
	conn.Retryer = retryer

	if err := conn.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	db, err := surrealdb.FromConnection(ctx, conn)
	if err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("from connection: %w", err)
	}

	if cfg.AuthLevel == "database" {
		_, err = db.SignIn(ctx, surrealdb.Auth{
			Namespace: cfg.Namespace,
			Database:  cfg.Database,
			Username:  cfg.Username,
			Password:  cfg.Password,
		})
	} else {
		_, err = db.SignIn(ctx, surrealdb.Auth{
			Username: cfg.Username,
			Password: cfg.Password,
		})
	}
	if err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("signin: %w", err)
	}

	if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("use %s/%s: %w", cfg.Namespace, cfg.Database, err)
	}

	return &SurrealKV{conn: conn, db: db}, nil
}

// kvRow is the shape of a row in the kv table.
type kvRow struct {
	Value string `json:"value"`
}

func (s *SurrealKV) Get(ctx context.Context, key string, out any) (bool, error) {
	results, err := surrealdb.Query[[]kvRow](ctx, s.db,
		"SELECT value FROM type::thing('kv', $key)",
		map[string]any{"key": key},
	)
	if err != nil {
		return false, fmt.Errorf("kv get %s: %w", key, err)
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return false, nil
	}
	if err := json.Unmarshal([]byte((*results)[0].Result[0].Value), out); err != nil {
		return false, fmt.Errorf("decode value %s: %w", key, err)
	}
	return true, nil
}

func (s *SurrealKV) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode value %s: %w", key, err)
	}
	_, err = surrealdb.Query[[]kvRow](ctx, s.db,
		"UPSERT type::thing('kv', $key) SET value = $value",
		map[string]any{"key": key, "value": string(data)},
	)
	if err != nil {
		return fmt.Errorf("kv set %s: %w", key, err)
	}
	return nil
}

// Close shuts down the underlying connection.
func (s *SurrealKV) Close(ctx context.Context) error {
	return s.conn.Close(ctx)
}
