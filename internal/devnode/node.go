package devnode

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	ledger "ledgergate/internal/ledger/models"
	"ledgergate/internal/platform/database"
)

// Node bundles a running dev node's parts.
type Node struct {
	Config *Config
	Vault  *Vault
	Engine *Engine
	pool   *database.Pool
	server *Server
}

// New opens the vault and wires sessions, flows and the RPC server.
func New(ctx context.Context, cfg *Config, logger *slog.Logger) (*Node, error) {
	dbCfg := database.DefaultConfig()
	dbCfg.DSN = cfg.VaultDSN
	if cfg.VaultDSN != ":memory:" {
		dbCfg.BusyTimeout = 5 * time.Second
	}
	pool, err := database.New(ctx, dbCfg)
	if err != nil {
		return nil, err
	}
	vault, err := NewVault(ctx, pool.DB())
	if err != nil {
		pool.Close() //nolint:errcheck // best-effort cleanup on init failure
		return nil, err
	}
	sessions, err := NewSessions(cfg.RPCUsers, cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		pool.Close() //nolint:errcheck // best-effort cleanup on init failure
		return nil, fmt.Errorf("init sessions: %w", err)
	}

	engine := NewEngine(logger, 4*cfg.MaxPollWait)
	engine.Register(ledger.FlowSayHello, NewHelloFlow(cfg, vault).Run)

	return &Node{
		Config: cfg,
		Vault:  vault,
		Engine: engine,
		pool:   pool,
		server: NewServer(cfg, sessions, vault, engine, logger),
	}, nil
}

func (n *Node) Handler() http.Handler {
	return n.server.Router()
}

// Close stops running flows and closes the vault.
func (n *Node) Close() error {
	n.Engine.Close()
	return n.pool.Close()
}
