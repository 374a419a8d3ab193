package devnode

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	ledger "ledgergate/internal/ledger/models"
	dErrors "ledgergate/pkg/domain-errors"
)

// MaxPageSize is the largest page the vault serves.
const MaxPageSize = 10_000

// Vault stores hello states in SQLite.
type Vault struct {
	db  *sql.DB
	now func() time.Time
}

// NewVault creates the schema if needed.
func NewVault(ctx context.Context, db *sql.DB) (*Vault, error) {
	v := &Vault{db: db, now: time.Now}
	if err := v.initSchema(ctx); err != nil {
		return nil, fmt.Errorf("init vault schema: %w", err)
	}
	return v, nil
}

func (v *Vault) initSchema(ctx context.Context) error {
	_, err := v.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS hello_states (
			seq           INTEGER PRIMARY KEY AUTOINCREMENT,
			tx_hash       TEXT    NOT NULL,
			output_index  INTEGER NOT NULL,
			state_type    TEXT    NOT NULL,
			contract      TEXT    NOT NULL,
			linear_id     TEXT    NOT NULL,
			external_id   TEXT    NOT NULL DEFAULT '',
			sender        TEXT    NOT NULL,
			receiver      TEXT    NOT NULL,
			message       TEXT    NOT NULL,
			notary        TEXT    NOT NULL,
			status        TEXT    NOT NULL,
			recorded_at   TIMESTAMP NOT NULL,
			consumed_at   TIMESTAMP,
			UNIQUE (tx_hash, output_index)
		);`,
	)
	return err
}

// Record stores every output of tx as an unconsumed state.
func (v *Vault) Record(ctx context.Context, tx ledger.SignedTransaction, contract string) error {
	dbTx, err := v.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin record: %w", err)
	}
	defer dbTx.Rollback() //nolint:errcheck // no-op after commit

	notary, err := json.Marshal(tx.Notary)
	if err != nil {
		return fmt.Errorf("encode notary: %w", err)
	}
	recordedAt := v.now().UTC()
	for i, out := range tx.Outputs {
		sender, err := json.Marshal(out.Sender)
		if err != nil {
			return fmt.Errorf("encode sender: %w", err)
		}
		receiver, err := json.Marshal(out.Receiver)
		if err != nil {
			return fmt.Errorf("encode receiver: %w", err)
		}
		_, err = dbTx.ExecContext(ctx, `
			INSERT INTO hello_states (tx_hash, output_index, state_type, contract, linear_id, external_id,
				sender, receiver, message, notary, status, recorded_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			tx.ID.String(), i, ledger.HelloStateType, contract,
			out.LinearID.ID.String(), out.LinearID.ExternalID,
			string(sender), string(receiver), out.Message, string(notary),
			string(ledger.StatusUnconsumed), recordedAt,
		)
		if err != nil {
			return fmt.Errorf("insert state %s(%d): %w", tx.ID, i, err)
		}
	}
	return dbTx.Commit()
}

// Query returns one page of states of stateType matching criteria, oldest first.
// Page numbers start at 1; anything else is rejected.
func (v *Vault) Query(
	ctx context.Context,
	stateType string,
	criteria ledger.LinearStateQueryCriteria,
	paging ledger.PageSpecification,
) (*ledger.Page, error) {
	if paging.PageNumber < 1 {
		return nil, dErrors.New(dErrors.CodeBadRequest,
			fmt.Sprintf("Page specification: invalid page number %d [page numbers start from 1]", paging.PageNumber))
	}
	if paging.PageSize < 1 || paging.PageSize > MaxPageSize {
		return nil, dErrors.New(dErrors.CodeBadRequest,
			fmt.Sprintf("Page specification: invalid page size %d [maximum page size is %d]", paging.PageSize, MaxPageSize))
	}

	status := ledger.StatusUnconsumed
	if criteria.Status != "" {
		var err error
		if status, err = ledger.ParseStateStatus(string(criteria.Status)); err != nil {
			return nil, dErrors.New(dErrors.CodeBadRequest, "Query criteria: "+err.Error())
		}
	}

	where, args := "state_type = ?", []any{stateType}
	if status != ledger.StatusAll {
		where += " AND status = ?"
		args = append(args, string(status))
	}
	if len(criteria.LinearIDs) > 0 {
		where += " AND linear_id IN (?" + strings.Repeat(",?", len(criteria.LinearIDs)-1) + ")"
		for _, id := range criteria.LinearIDs {
			args = append(args, id.ID.String())
		}
	}

	page := &ledger.Page{States: []ledger.StateAndRef{}, StatesMetadata: []ledger.StateMetadata{}}
	if err := v.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM hello_states WHERE "+where, args...).
		Scan(&page.TotalStatesAvailable); err != nil {
		return nil, fmt.Errorf("count states: %w", err)
	}

	offset := int64(paging.PageNumber-1) * int64(paging.PageSize)
	if offset >= page.TotalStatesAvailable {
		return page, nil
	}

	rows, err := v.db.QueryContext(ctx, `
		SELECT tx_hash, output_index, contract, linear_id, external_id, sender, receiver, message,
			notary, status, recorded_at, consumed_at
		FROM hello_states WHERE `+where+`
		ORDER BY seq
		LIMIT ? OFFSET ?`,
		append(args, paging.PageSize, offset)...,
	)
	if err != nil {
		return nil, fmt.Errorf("query states: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		sr, meta, err := scanState(rows)
		if err != nil {
			return nil, err
		}
		meta.ContractStateClassName = stateType
		page.States = append(page.States, sr)
		page.StatesMetadata = append(page.StatesMetadata, meta)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate states: %w", err)
	}
	return page, nil
}

func scanState(rows *sql.Rows) (ledger.StateAndRef, ledger.StateMetadata, error) {
	var (
		txHash, contract, linearID, externalID string
		sender, receiver, message, notary      string
		status                                 string
		index                                  int
		recordedAt                             time.Time
		consumedAt                             sql.NullTime
	)
	if err := rows.Scan(&txHash, &index, &contract, &linearID, &externalID, &sender, &receiver, &message,
		&notary, &status, &recordedAt, &consumedAt); err != nil {
		return ledger.StateAndRef{}, ledger.StateMetadata{}, fmt.Errorf("scan state: %w", err)
	}

	id, err := uuid.Parse(linearID)
	if err != nil {
		return ledger.StateAndRef{}, ledger.StateMetadata{}, fmt.Errorf("parse linear id %q: %w", linearID, err)
	}
	data := ledger.HelloState{Message: message, LinearID: ledger.UniqueIdentifier{ExternalID: externalID, ID: id}}
	var notaryName ledger.X500Name
	for _, f := range []struct {
		raw string
		dst *ledger.X500Name
	}{{sender, &data.Sender}, {receiver, &data.Receiver}, {notary, &notaryName}} {
		if err := json.Unmarshal([]byte(f.raw), f.dst); err != nil {
			return ledger.StateAndRef{}, ledger.StateMetadata{}, fmt.Errorf("decode party: %w", err)
		}
	}

	ref := ledger.StateRef{TxHash: ledger.SecureHash(txHash), Index: index}
	meta := ledger.StateMetadata{Ref: ref, RecordedTime: recordedAt, Status: ledger.StateStatus(status)}
	if consumedAt.Valid {
		t := consumedAt.Time
		meta.ConsumedTime = &t
	}
	return ledger.StateAndRef{
		State: ledger.TransactionState{Data: data, Contract: contract, Notary: notaryName},
		Ref:   ref,
	}, meta, nil
}
