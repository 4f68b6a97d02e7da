package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/idmesh-go/internal/actor"
	"github.com/yndnr/idmesh-go/internal/core/domain"
	"github.com/yndnr/idmesh-go/internal/telemetry/logger"
)

// Asker sends a message and waits a bounded time for the reply.
type Asker interface {
	Ask(ctx context.Context, to actor.Ref, msg any, timeout time.Duration) (any, error)
}

// AccountConfig configures an AccountService.
type AccountConfig struct {
	// IDs answers IdRequest, usually the ID cache pool.
	IDs actor.Ref
	// Ledger receives LedgerOperations.
	Ledger actor.Ref
	// Reset is the reset coordinator.
	Reset actor.Ref
	// AskTimeout bounds the wait for an ID.
	AskTimeout time.Duration
	// ResetDelay is the coordinator's acknowledgment delay. Reset waits
	// for it plus AskTimeout.
	ResetDelay time.Duration
	Logger     logger.Logger
}

// AccountService creates accounts on behalf of the HTTP API. It is the
// only place that waits on units, always with a timeout.
type AccountService struct {
	asker Asker
	cfg   AccountConfig
	log   logger.Logger
}

// NewAccountService creates an AccountService.
func NewAccountService(asker Asker, cfg AccountConfig) *AccountService {
	if cfg.AskTimeout <= 0 {
		cfg.AskTimeout = 5 * time.Second
	}
	if cfg.ResetDelay < 0 {
		cfg.ResetDelay = DefaultResetDelay
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}
	return &AccountService{
		asker: asker,
		cfg:   cfg,
		log:   cfg.Logger.With("component", "account-service"),
	}
}

// NextID returns one ID from the pipeline. It fails with
// domain.ErrUnavailable when no ID arrives within AskTimeout.
func (s *AccountService) NextID(ctx context.Context) (string, error) {
	reply, err := s.asker.Ask(ctx, s.cfg.IDs, domain.IdRequest{}, s.cfg.AskTimeout)
	if err != nil {
		if errors.Is(err, actor.ErrAskTimeout) {
			s.log.Warn("no id within timeout", "timeout", s.cfg.AskTimeout.String())
			return "", domain.ErrUnavailable.WithCause(err)
		}
		return "", err
	}
	resp, ok := reply.(domain.IdResponse)
	if !ok {
		return "", domain.ErrInternalServer.WithDetails(fmt.Sprintf("unexpected reply %T", reply))
	}
	return resp.ID, nil
}

// CreateAccount allocates an account ID and, for a positive balance,
// forwards an issuance to the ledger without waiting for it.
func (s *AccountService) CreateAccount(ctx context.Context, balance int64) (domain.Account, error) {
	if balance < 0 {
		return domain.Account{}, domain.ErrInvalidArgument.WithDetails("balance must not be negative")
	}

	id, err := s.NextID(ctx)
	if err != nil {
		return domain.Account{}, err
	}
	s.log.Info("account created", "account", id)

	if balance > 0 && s.cfg.Ledger != nil {
		s.cfg.Ledger.Tell(domain.LedgerOperation{
			ID:      ulid.Make().String(),
			Kind:    domain.LedgerIssue,
			Account: id,
			Amount:  balance,
		}, nil)
	}
	return domain.Account{ID: id, Balance: balance}, nil
}

// Reset resets the frontend and, through the proxies, the backend. It
// returns once the coordinator acknowledges.
func (s *AccountService) Reset(ctx context.Context) error {
	reply, err := s.asker.Ask(ctx, s.cfg.Reset, domain.Reset{}, s.cfg.ResetDelay+s.cfg.AskTimeout)
	if err != nil {
		if errors.Is(err, actor.ErrAskTimeout) {
			return domain.ErrUnavailable.WithCause(err)
		}
		return err
	}
	if _, ok := reply.(domain.Reseted); !ok {
		return domain.ErrInternalServer.WithDetails(fmt.Sprintf("unexpected reply %T", reply))
	}
	s.log.Info("reset acknowledged")
	return nil
}
