package devnode

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	ledger "ledgergate/internal/ledger/models"
	"ledgergate/internal/platform/database"
)

var (
	partyA = ledger.X500Name{Organisation: "PartyA", Locality: "London", Country: "GB"}
	partyB = ledger.X500Name{Organisation: "PartyB", Locality: "New York", Country: "US"}
	partyC = ledger.X500Name{Organisation: "PartyC", Locality: "Paris", Country: "FR"}
	notary = ledger.X500Name{Organisation: "Notary", Locality: "Zurich", Country: "CH"}
	oracle = ledger.X500Name{Organisation: "Oracle", Locality: "Madrid", Country: "ES"}
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testConfig is a normalized network of PartyA with two peers, a notary and an oracle.
func testConfig(t *testing.T) *Config {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("test"), bcrypt.MinCost)
	require.NoError(t, err)
	cfg := &Config{
		Self:     partyA,
		Notary:   notary,
		Peers:    []ledger.X500Name{partyB, oracle, partyC},
		RPCUsers: []RPCUser{{Username: "user1", PasswordHash: string(hash)}},
	}
	require.NoError(t, cfg.normalize())
	return cfg
}

func newTestVault(t *testing.T) *Vault {
	t.Helper()
	pool, err := database.New(context.Background(), database.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Close() })
	v, err := NewVault(context.Background(), pool.DB())
	require.NoError(t, err)
	return v
}
