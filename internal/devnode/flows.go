package devnode

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	ledger "ledgergate/internal/ledger/models"
	"ledgergate/internal/ledger/rpc"
	dErrors "ledgergate/pkg/domain-errors"
)

// HelloContract is the contract governing hello states.
const HelloContract = "net.corda.demo.node.contract.HelloContract"

// FlowFunc runs one flow to completion. A nil transaction with a nil error
// means the flow finished without producing one.
type FlowFunc func(ctx context.Context, args []string) (*ledger.SignedTransaction, error)

type flowRun struct {
	id         string
	name       string
	done       chan struct{}
	tx         *ledger.SignedTransaction
	err        error
	finishedAt time.Time
}

func (r *flowRun) result() rpc.FlowResultResponse {
	select {
	case <-r.done:
	default:
		return rpc.FlowResultResponse{FlowID: r.id, Status: rpc.FlowRunning}
	}
	if r.err != nil {
		return rpc.FlowResultResponse{FlowID: r.id, Status: rpc.FlowFailed, Error: r.err.Error()}
	}
	return rpc.FlowResultResponse{FlowID: r.id, Status: rpc.FlowCompleted, Transaction: r.tx}
}

// Engine runs registered flows in the background and keeps their outcomes
// for retention after they finish.
type Engine struct {
	logger    *slog.Logger
	retention time.Duration

	mu    sync.Mutex
	flows map[string]FlowFunc
	runs  map[string]*flowRun

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewEngine(logger *slog.Logger, retention time.Duration) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		logger:    logger,
		retention: retention,
		flows:     make(map[string]FlowFunc),
		runs:      make(map[string]*flowRun),
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (e *Engine) Register(name string, fn FlowFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.flows[name] = fn
}

// Start launches flow name and returns its id.
func (e *Engine) Start(name string, args []string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	fn, ok := e.flows[name]
	if !ok {
		return "", dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("Flow %s is not registered", name))
	}
	if e.ctx.Err() != nil {
		return "", dErrors.New(dErrors.CodeUnavailable, "node is shutting down")
	}
	e.evictLocked(time.Now())

	run := &flowRun{id: uuid.NewString(), name: name, done: make(chan struct{})}
	e.runs[run.id] = run

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		tx, err := fn(e.ctx, args)
		run.tx, run.err, run.finishedAt = tx, err, time.Now()
		close(run.done)
		if err != nil {
			e.logger.Warn("flow failed", "flow", name, "flow_id", run.id, "error", err)
			return
		}
		e.logger.Info("flow completed", "flow", name, "flow_id", run.id, "produced_tx", tx != nil)
	}()
	return run.id, nil
}

// Await returns the outcome of flow id, waiting up to wait for it to finish.
// A flow still running after wait is reported as RUNNING.
func (e *Engine) Await(ctx context.Context, id string, wait time.Duration) (rpc.FlowResultResponse, error) {
	e.mu.Lock()
	run, ok := e.runs[id]
	e.mu.Unlock()
	if !ok {
		return rpc.FlowResultResponse{}, dErrors.New(dErrors.CodeNotFound, "Unknown flow "+id)
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-run.done:
	case <-timer.C:
	case <-ctx.Done():
	}
	return run.result(), nil
}

func (e *Engine) evictLocked(now time.Time) {
	for id, run := range e.runs {
		select {
		case <-run.done:
			if now.Sub(run.finishedAt) > e.retention {
				delete(e.runs, id)
			}
		default:
		}
	}
}

// Close cancels running flows and waits for them to return.
func (e *Engine) Close() {
	e.cancel()
	e.wg.Wait()
}

// HelloFlow implements SayHelloFlow: it greets the next eligible counterparty
// in turn and records the greeting in the vault.
type HelloFlow struct {
	self         ledger.X500Name
	notary       ledger.X500Name
	counterparts []ledger.X500Name
	vault        *Vault
	delay        time.Duration
	next         atomic.Uint64
}

// NewHelloFlow picks counterparties among the configured peers, skipping this
// node and every service organisation.
func NewHelloFlow(cfg *Config, vault *Vault) *HelloFlow {
	f := &HelloFlow{self: cfg.Self, notary: cfg.Notary, vault: vault, delay: cfg.FlowDelay}
	for _, p := range cfg.Peers {
		if p == cfg.Self || slices.Contains(cfg.ServiceOrganisations, p.Organisation) {
			continue
		}
		f.counterparts = append(f.counterparts, p)
	}
	return f
}

var errUnsupportedCommand = errors.New("SayHelloFlow requires command " + ledger.CommandCreate)

func (f *HelloFlow) Run(ctx context.Context, args []string) (*ledger.SignedTransaction, error) {
	if !slices.Contains(args, ledger.CommandCreate) {
		return nil, errUnsupportedCommand
	}
	if len(f.counterparts) == 0 {
		return nil, nil
	}
	peer := f.counterparts[(f.next.Add(1)-1)%uint64(len(f.counterparts))]

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	state := ledger.HelloState{
		Sender:   f.self,
		Receiver: peer,
		Message:  "Hello " + peer.Organisation + "!",
		LinearID: ledger.NewUniqueIdentifier(""),
	}
	tx := ledger.SignedTransaction{
		Outputs: []ledger.HelloState{state},
		Signers: []ledger.X500Name{f.self, peer},
		Notary:  f.notary,
	}
	id, err := transactionID(tx)
	if err != nil {
		return nil, err
	}
	tx.ID = id

	if err := f.vault.Record(ctx, tx, HelloContract); err != nil {
		return nil, fmt.Errorf("record transaction %s: %w", tx.ID, err)
	}
	return &tx, nil
}

// transactionID is the upper-case hex SHA-256 of the transaction contents.
// Linear ids are unique, so two transactions never share an id.
func transactionID(tx ledger.SignedTransaction) (ledger.SecureHash, error) {
	tx.ID = ""
	payload, err := json.Marshal(tx)
	if err != nil {
		return "", fmt.Errorf("encode transaction: %w", err)
	}
	sum := sha256.Sum256(payload)
	return ledger.SecureHash(strings.ToUpper(hex.EncodeToString(sum[:]))), nil
}

func owningKey(name ledger.X500Name) string {
	sum := sha256.Sum256([]byte(name.String()))
	return "DL" + strings.ToUpper(hex.EncodeToString(sum[:16]))
}
