package execution

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockmq/internal/rpc"
)

func accepted(id int64) Transaction {
	return Transaction{ID: id, Action: ActionNewOrder, Board: "SPBFUT", OrderID: 42, State: StateAccepted}
}

func TestPoller_AcceptedThenExecuted(t *testing.T) {
	ch := scripted(
		txFields(1, ActionNewOrder, 42, StateAccepted, ""),
		txFields(1, ActionNewOrder, 42, StateAccepted, ""),
		txFields(1, ActionNewOrder, 42, StateExecuted, ""),
	)
	p := NewPoller(NewBuilder(ch, nil), time.Millisecond, nil)

	tx, err := p.Wait(context.Background(), accepted(1), time.Second)
	require.NoError(t, err)
	assert.Equal(t, StateExecuted, tx.State)
	assert.Equal(t, int64(42), tx.OrderID)
	assert.Equal(t, []string{MethodUpdateTx, MethodUpdateTx, MethodUpdateTx}, ch.methods())
}

func TestPoller_TerminalWithoutRefresh(t *testing.T) {
	ch := scripted(txFields(1, ActionNewOrder, 42, StateAccepted, ""))
	p := NewPoller(NewBuilder(ch, nil), time.Millisecond, nil)

	done := accepted(1)
	done.State = StateExecuted
	tx, err := p.Wait(context.Background(), done, 0)
	require.NoError(t, err)
	assert.Equal(t, done, tx)
	assert.Zero(t, ch.count())
}

func TestPoller_RejectedCarriesMessage(t *testing.T) {
	ch := scripted(
		txFields(1, ActionNewOrder, 42, StateAccepted, ""),
		txFields(1, ActionNewOrder, 42, StateRejected, "Not enough funds: 1600.00"),
	)
	p := NewPoller(NewBuilder(ch, nil), time.Millisecond, nil)

	_, err := p.Wait(context.Background(), accepted(1), time.Second)
	require.ErrorIs(t, err, ErrRejected)

	var rejected *RejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, "Not enough funds: 1600.00", rejected.Message)
	assert.Equal(t, StateRejected, rejected.Tx.State)
}

func TestPoller_TimeoutBounds(t *testing.T) {
	const (
		timeout  = 50 * time.Millisecond
		interval = 10 * time.Millisecond
		slack    = 40 * time.Millisecond
	)
	ch := scripted(txFields(1, ActionNewOrder, 42, StateAccepted, ""))
	p := NewPoller(NewBuilder(ch, nil), interval, nil)

	start := time.Now()
	tx, err := p.Wait(context.Background(), accepted(1), timeout)
	elapsed := time.Since(start)

	require.ErrorIs(t, err, ErrTimeout)
	var timedOut *TimeoutError
	require.True(t, errors.As(err, &timedOut))
	assert.Equal(t, timeout, timedOut.Timeout)
	assert.GreaterOrEqual(t, timedOut.Elapsed, timeout)
	assert.Equal(t, StateAccepted, tx.State)

	assert.GreaterOrEqual(t, elapsed, timeout)
	assert.LessOrEqual(t, elapsed, timeout+interval+slack)
}

func TestPoller_ZeroTimeoutFailsImmediately(t *testing.T) {
	ch := scripted(txFields(1, ActionNewOrder, 42, StateExecuted, ""))
	p := NewPoller(NewBuilder(ch, nil), time.Millisecond, nil)

	_, err := p.Wait(context.Background(), accepted(1), 0)
	require.ErrorIs(t, err, ErrTimeout)
	assert.Zero(t, ch.count())
}

func TestPoller_UnknownStateIsDecodeError(t *testing.T) {
	p := NewPoller(NewBuilder(scripted(txFields(1, ActionNewOrder, 42, StateAccepted, "")), nil), time.Millisecond, nil)

	tx := accepted(1)
	tx.State = "PENDING"
	_, err := p.Wait(context.Background(), tx, time.Second)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestPoller_RefreshErrorStopsWaiting(t *testing.T) {
	ch := &fakeChannel{handler: func(method string, _ []interface{}) (interface{}, error) {
		return nil, &rpc.TransportError{Method: method, Err: errors.New("socket closed")}
	}}
	p := NewPoller(NewBuilder(ch, nil), time.Millisecond, nil)

	_, err := p.Wait(context.Background(), accepted(1), time.Second)
	require.ErrorIs(t, err, ErrTransport)
	assert.Equal(t, 1, ch.count())
}

func TestPoller_ContextCancelled(t *testing.T) {
	ch := scripted(txFields(1, ActionNewOrder, 42, StateAccepted, ""))
	p := NewPoller(NewBuilder(ch, nil), 5*time.Millisecond, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.Wait(ctx, accepted(1), time.Minute)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewPoller_DefaultInterval(t *testing.T) {
	p := NewPoller(nil, 0, nil)
	assert.Equal(t, DefaultPollInterval, p.Interval())
}
