package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yndnr/idmesh-go/internal/actor"
	"github.com/yndnr/idmesh-go/internal/core/domain"
	"github.com/yndnr/idmesh-go/internal/telemetry/logger"
)

func newAccountService(t *testing.T, sys *actor.System, ids actor.Ref, ledger actor.Ref) *AccountService {
	t.Helper()
	sup := spawn(t, sys, actor.SupervisorProps(actor.DefaultStrategy()), "frontend")
	coordinator, err := actor.CreateChild(context.Background(), sys, sup, ResetCoordinatorProps(0), "reset", testTimeout)
	require.NoError(t, err)
	return NewAccountService(sys, AccountConfig{
		IDs:        ids,
		Ledger:     ledger,
		Reset:      coordinator,
		AskTimeout: 200 * time.Millisecond,
		Logger:     logger.Discard(),
	})
}

func TestAccountService_CreateAccount(t *testing.T) {
	sys := newTestSystem(t)
	alloc := spawn(t, sys, AllocatorProps(AllocatorConfig{}), "allocator")
	ids := spawn(t, sys, IDCacheProps(IDCacheConfig{Capacity: 8, Generator: alloc}), "ids")
	ledger := sys.NewInbox()
	defer ledger.Close()
	svc := newAccountService(t, sys, ids, ledger.Ref())

	acct, err := svc.CreateAccount(context.Background(), 250)
	require.NoError(t, err)
	assert.Equal(t, domain.Account{ID: "0", Balance: 250}, acct)

	op, ok := receive(t, ledger).Message.(domain.LedgerOperation)
	require.True(t, ok)
	assert.NotEmpty(t, op.ID)
	assert.Equal(t, domain.LedgerIssue, op.Kind)
	assert.Equal(t, "0", op.Account)
	assert.Equal(t, int64(250), op.Amount)

	acct, err = svc.CreateAccount(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, "1", acct.ID)
	expectNothing(t, ledger, 50*time.Millisecond)
}

func TestAccountService_RejectsNegativeBalance(t *testing.T) {
	sys := newTestSystem(t)
	ids := sys.NewInbox()
	defer ids.Close()
	svc := newAccountService(t, sys, ids.Ref(), nil)

	_, err := svc.CreateAccount(context.Background(), -1)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	expectNothing(t, ids, 50*time.Millisecond)
}

func TestAccountService_UnavailableWithoutBackend(t *testing.T) {
	sys := newTestSystem(t)
	proxy := spawn(t, sys, ProxyProps(ProxyConfig{Service: domain.ServiceIDGenerator}), "id-proxy")
	ids := spawn(t, sys, IDCacheProps(IDCacheConfig{Capacity: 8, Generator: proxy}), "ids")
	svc := newAccountService(t, sys, ids, nil)

	_, err := svc.CreateAccount(context.Background(), 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnavailable)
	assert.ErrorIs(t, err, actor.ErrAskTimeout)
	assert.Equal(t, "IDM-SYS-5030", domain.GetErrorCode(err))
}

func TestAccountService_Reset(t *testing.T) {
	sys := newTestSystem(t)
	ids := sys.NewInbox()
	defer ids.Close()
	svc := newAccountService(t, sys, ids.Ref(), nil)

	require.NoError(t, svc.Reset(context.Background()))
}
