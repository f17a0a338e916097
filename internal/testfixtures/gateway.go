package testfixtures

import (
	"testing"
	"time"

	"github.com/example/eventhub/internal/gateway/local"
	"github.com/example/eventhub/internal/realtime"
)

// TestSecret signs tokens issued by harness gateways.
const TestSecret = "test-secret"

// FastPasswordParams keeps argon2 cheap in tests.
var FastPasswordParams = local.Argon2idParams{
	Memory:      1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

// GatewayHarness wires a local gateway to a migrated SQLite store and an
// in-memory broker, all driven by the harness clock.
type GatewayHarness struct {
	*SQLiteHarness
	Gateway *local.Gateway
	Broker  *realtime.MemoryBroker
	IDs     *IDGenerator
}

// GatewayOption adjusts the gateway options before construction.
type GatewayOption func(*local.Options)

// WithOAuthClient enables a third-party sign-in provider.
func WithOAuthClient(provider, clientID string) GatewayOption {
	return func(o *local.Options) {
		if o.OAuthClientIDs == nil {
			o.OAuthClientIDs = make(map[string]string)
		}
		o.OAuthClientIDs[provider] = clientID
	}
}

// WithSessionTTL overrides the access token lifetime.
func WithSessionTTL(ttl time.Duration) GatewayOption {
	return func(o *local.Options) {
		o.SessionTTL = ttl
	}
}

// NewGatewayHarness builds a GatewayHarness. Generated identifiers use the
// "gen" prefix.
func NewGatewayHarness(tb testing.TB, opts ...GatewayOption) *GatewayHarness {
	tb.Helper()

	sqlHarness := NewSQLiteHarness(tb)
	broker := realtime.NewMemoryBroker()
	ids := NewIDGenerator("gen")
	params := FastPasswordParams

	options := local.Options{
		Secret:         []byte(TestSecret),
		SessionTTL:     time.Hour,
		PasswordParams: &params,
		Now:            sqlHarness.Clock.NowFunc(),
		NewID:          ids.NextFunc(),
	}
	for _, opt := range opts {
		opt(&options)
	}

	gw, err := local.New(sqlHarness.Store, broker, options)
	if err != nil {
		tb.Fatalf("failed to build gateway: %v", err)
	}
	tb.Cleanup(func() { _ = broker.Close() })

	return &GatewayHarness{SQLiteHarness: sqlHarness, Gateway: gw, Broker: broker, IDs: ids}
}
