package devnode

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ledger "ledgergate/internal/ledger/models"
	"ledgergate/internal/ledger/rpc"
	dErrors "ledgergate/pkg/domain-errors"
)

func TestEngine(t *testing.T) {
	engine := NewEngine(discardLogger(), time.Minute)
	t.Cleanup(engine.Close)

	release := make(chan struct{})
	engine.Register("BlockingFlow", func(ctx context.Context, _ []string) (*ledger.SignedTransaction, error) {
		select {
		case <-release:
			return &ledger.SignedTransaction{ID: "ABC"}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})
	engine.Register("BrokenFlow", func(context.Context, []string) (*ledger.SignedTransaction, error) {
		return nil, errors.New("counterparty refused")
	})
	ctx := context.Background()

	t.Run("running then completed", func(t *testing.T) {
		id, err := engine.Start("BlockingFlow", nil)
		require.NoError(t, err)

		res, err := engine.Await(ctx, id, 10*time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, rpc.FlowRunning, res.Status)
		assert.Equal(t, id, res.FlowID)

		close(release)
		res, err = engine.Await(ctx, id, 5*time.Second)
		require.NoError(t, err)
		assert.Equal(t, rpc.FlowCompleted, res.Status)
		require.NotNil(t, res.Transaction)
		assert.Equal(t, ledger.SecureHash("ABC"), res.Transaction.ID)
	})

	t.Run("failure carries the flow error", func(t *testing.T) {
		id, err := engine.Start("BrokenFlow", nil)
		require.NoError(t, err)

		res, err := engine.Await(ctx, id, 5*time.Second)
		require.NoError(t, err)
		assert.Equal(t, rpc.FlowFailed, res.Status)
		assert.Equal(t, "counterparty refused", res.Error)
		assert.Nil(t, res.Transaction)
	})

	t.Run("unknown flow name", func(t *testing.T) {
		_, err := engine.Start("NoSuchFlow", nil)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
		assert.EqualError(t, err, "Flow NoSuchFlow is not registered")
	})

	t.Run("unknown flow id", func(t *testing.T) {
		_, err := engine.Await(ctx, "missing", time.Millisecond)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func TestEngine_CloseCancelsRunningFlows(t *testing.T) {
	engine := NewEngine(discardLogger(), time.Minute)
	engine.Register("Forever", func(ctx context.Context, _ []string) (*ledger.SignedTransaction, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	id, err := engine.Start("Forever", nil)
	require.NoError(t, err)

	engine.Close()

	res, err := engine.Await(context.Background(), id, time.Second)
	require.NoError(t, err)
	assert.Equal(t, rpc.FlowFailed, res.Status)

	_, err = engine.Start("Forever", nil)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
}

func TestHelloFlow(t *testing.T) {
	cfg := testConfig(t)
	vault := newTestVault(t)
	flow := NewHelloFlow(cfg, vault)
	ctx := context.Background()

	t.Run("greets eligible peers in turn", func(t *testing.T) {
		var receivers []ledger.X500Name
		for range 3 {
			tx, err := flow.Run(ctx, []string{ledger.CommandCreate})
			require.NoError(t, err)
			require.NotNil(t, tx)
			require.Len(t, tx.Outputs, 1)

			out := tx.Outputs[0]
			assert.Equal(t, partyA, out.Sender)
			assert.Equal(t, "Hello "+out.Receiver.Organisation+"!", out.Message)
			assert.Equal(t, []ledger.X500Name{partyA, out.Receiver}, tx.Signers)
			assert.Equal(t, notary, tx.Notary)
			assert.Len(t, tx.ID.String(), 64)
			receivers = append(receivers, out.Receiver)
		}
		assert.Equal(t, []ledger.X500Name{partyB, partyC, partyB}, receivers)

		page, err := vault.Query(ctx, ledger.HelloStateType, unconsumed(), ledger.PageSpecification{PageNumber: 1, PageSize: 10})
		require.NoError(t, err)
		assert.EqualValues(t, 3, page.TotalStatesAvailable)
	})

	t.Run("requires the create command", func(t *testing.T) {
		_, err := flow.Run(ctx, []string{"HelloContract.Commands.Destroy"})
		assert.ErrorIs(t, err, errUnsupportedCommand)
	})

	t.Run("no counterparty finishes without a transaction", func(t *testing.T) {
		lonely := *cfg
		lonely.Peers = []ledger.X500Name{oracle}
		tx, err := NewHelloFlow(&lonely, vault).Run(ctx, []string{ledger.CommandCreate})
		assert.NoError(t, err)
		assert.Nil(t, tx)
	})

	t.Run("delay honours cancellation", func(t *testing.T) {
		slow := *cfg
		slow.FlowDelay = time.Hour
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := NewHelloFlow(&slow, vault).Run(cctx, []string{ledger.CommandCreate})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestTransactionIDIsContentHash(t *testing.T) {
	tx := ledger.SignedTransaction{
		Outputs: []ledger.HelloState{{Sender: partyA, Receiver: partyB, Message: "Hello PartyB!"}},
		Notary:  notary,
	}
	a, err := transactionID(tx)
	require.NoError(t, err)
	tx.ID = "ignored"
	b, err := transactionID(tx)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	tx.Outputs[0].Message = "Hello PartyC!"
	c, err := transactionID(tx)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}
