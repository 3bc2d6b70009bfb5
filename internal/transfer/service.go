package transfer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/congo-pay/transfers/internal/account"
	"github.com/congo-pay/transfers/internal/ledger"
	"github.com/congo-pay/transfers/internal/logging"
	"github.com/congo-pay/transfers/internal/notification"
)

// DefaultLockTimeout bounds each guard acquisition when none is configured.
const DefaultLockTimeout = 100 * time.Millisecond

const notifyTimeout = 2 * time.Second

// ErrAborted indicates a guard could not be acquired in time or the wait was
// interrupted. Nothing was mutated and the caller may retry.
var ErrAborted = errors.New("transfer aborted")

// Stage names a step of the transfer protocol.
type Stage string

const (
	StagePending                 Stage = "PENDING"
	StageValidatingStructural    Stage = "VALIDATING_STRUCTURAL"
	StageLocking                 Stage = "LOCKING"
	StageValidatingAuthoritative Stage = "VALIDATING_AUTHORITATIVE"
	StageCommitting              Stage = "COMMITTING"
	StageNotifying               Stage = "NOTIFYING"
	StageDone                    Stage = "DONE"
	StageFailed                  Stage = "FAILED"
)

// Result describes a committed transfer. Balances are the values written
// while both guards were held.
type Result struct {
	TransactionID string
	FromBalance   decimal.Decimal
	ToBalance     decimal.Decimal
	CompletedAt   time.Time
}

// Service moves funds between accounts held in the shared store.
type Service struct {
	accounts    account.Repository
	notifier    notification.Notifier
	journal     ledger.Ledger
	logger      *slog.Logger
	lockTimeout time.Duration
	structural  *Validator
}

// Option customises a Service.
type Option func(*Service)

// WithLedger records every committed transfer in journal.
func WithLedger(journal ledger.Ledger) Option {
	return func(s *Service) { s.journal = journal }
}

// NewService constructs the transfer engine. A nil notifier disables
// notifications; a non-positive lockTimeout selects DefaultLockTimeout.
func NewService(accounts account.Repository, notifier notification.Notifier, logger *slog.Logger, lockTimeout time.Duration, opts ...Option) *Service {
	if logger == nil {
		logger = logging.Discard()
	}
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	s := &Service{
		accounts:    accounts,
		notifier:    notifier,
		logger:      logger,
		lockTimeout: lockTimeout,
		structural:  NewValidator(Structural, nil),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Transfer atomically moves amount from fromID to toID. It returns a
// *ValidationError for rule violations, including absent endpoints, and an
// ErrAborted wrap on guard contention.
func (s *Service) Transfer(ctx context.Context, fromID, toID string, amount decimal.NullDecimal) (Result, error) {
	t := Transfer{FromID: fromID, ToID: toID, Amount: amount}
	txID := uuid.NewString()
	log := s.logger.With(
		slog.String("transaction_id", txID),
		slog.String("from_account", fromID),
		slog.String("to_account", toID),
	)
	log.Debug("transfer stage", slog.String("stage", string(StagePending)))

	log.Debug("transfer stage", slog.String("stage", string(StageValidatingStructural)))
	var errs Errors
	if err := s.structural.Validate(ctx, t, &errs); err != nil {
		return Result{}, s.fail(log, StageValidatingStructural, err)
	}
	if err := errs.Err(); err != nil {
		return Result{}, s.fail(log, StageValidatingStructural, err)
	}

	res, err := s.commit(ctx, log, t)
	if err != nil {
		return Result{}, err
	}
	res.TransactionID = txID

	// The transfer is committed; nothing below may fail it.
	bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	s.record(bg, log, t, res)

	log.Debug("transfer stage", slog.String("stage", string(StageNotifying)))
	s.notify(bg, log, t, res)

	log.Info("transfer completed",
		slog.String("stage", string(StageDone)),
		slog.String("amount", t.Amount.Decimal.String()),
		slog.String("from_balance", res.FromBalance.String()),
		slog.String("to_balance", res.ToBalance.String()),
	)
	return res, nil
}

// commit runs the critical section and returns the balances it wrote. Guards
// are released before it returns, in reverse order of acquisition.
func (s *Service) commit(ctx context.Context, log *slog.Logger, t Transfer) (Result, error) {
	log.Debug("transfer stage", slog.String("stage", string(StageLocking)))

	// Canonical order: the lexicographically smaller id is always locked first,
	// so opposite-direction transfers on one pair cannot wait on each other.
	firstID, secondID := t.FromID, t.ToID
	if secondID < firstID {
		firstID, secondID = secondID, firstID
	}

	first, err := s.accounts.Get(ctx, firstID)
	if err != nil {
		return Result{}, s.fail(log, StageLocking, s.missing(ctx, t, err))
	}
	second, err := s.accounts.Get(ctx, secondID)
	if err != nil {
		return Result{}, s.fail(log, StageLocking, s.missing(ctx, t, err))
	}

	releaseFirst, err := first.Guard().Acquire(ctx, s.lockTimeout)
	if err != nil {
		return Result{}, s.abort(log, firstID, err)
	}
	defer releaseFirst()

	releaseSecond, err := second.Guard().Acquire(ctx, s.lockTimeout)
	if err != nil {
		return Result{}, s.abort(log, secondID, err)
	}
	defer releaseSecond()

	log.Debug("transfer stage", slog.String("stage", string(StageValidatingAuthoritative)))
	fresh, err := s.reread(ctx, t.FromID, t.ToID)
	if err != nil {
		return Result{}, s.fail(log, StageValidatingAuthoritative, err)
	}
	var errs Errors
	if err := NewValidator(Authoritative, fresh).Validate(ctx, t, &errs); err != nil {
		return Result{}, s.fail(log, StageValidatingAuthoritative, err)
	}
	if err := errs.Err(); err != nil {
		return Result{}, s.fail(log, StageValidatingAuthoritative, err)
	}

	log.Debug("transfer stage", slog.String("stage", string(StageCommitting)))
	from, to := fresh[t.FromID], fresh[t.ToID]
	from.Withdraw(t.Amount.Decimal)
	to.Deposit(t.Amount.Decimal)
	if err := s.accounts.Save(ctx, from, to); err != nil {
		return Result{}, s.fail(log, StageCommitting, fmt.Errorf("persist transfer: %w", err))
	}
	return Result{
		FromBalance: from.Balance,
		ToBalance:   to.Balance,
		CompletedAt: time.Now().UTC(),
	}, nil
}

// reread loads current snapshots of both endpoints. Absent accounts are left
// out so the authoritative pass reports them.
func (s *Service) reread(ctx context.Context, ids ...string) (snapshot, error) {
	snap := make(snapshot, len(ids))
	for _, id := range ids {
		a, err := s.accounts.Get(ctx, id)
		if errors.Is(err, account.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		snap[id] = a
	}
	return snap, nil
}

// missing turns a lookup miss into the rule codes the authoritative pass would
// report, so callers see which endpoint is absent. Other errors pass through.
func (s *Service) missing(ctx context.Context, t Transfer, cause error) error {
	if !errors.Is(cause, account.ErrNotFound) {
		return cause
	}
	var errs Errors
	if err := NewValidator(Authoritative, s.accounts).Validate(ctx, t, &errs); err != nil {
		return err
	}
	if err := errs.Err(); err != nil {
		return err
	}
	return cause
}

func (s *Service) record(ctx context.Context, log *slog.Logger, t Transfer, res Result) {
	if s.journal == nil {
		return
	}
	err := s.journal.Record(ctx, ledger.Posting{
		TransactionID: res.TransactionID,
		FromID:        t.FromID,
		ToID:          t.ToID,
		Amount:        t.Amount.Decimal,
		FromBalance:   res.FromBalance,
		ToBalance:     res.ToBalance,
		CommittedAt:   res.CompletedAt,
	})
	if err != nil {
		log.Warn("transfer journal write failed", slog.Any("error", err))
	}
}

func (s *Service) notify(ctx context.Context, log *slog.Logger, t Transfer, res Result) {
	if s.notifier == nil {
		return
	}

	amount := t.Amount.Decimal
	now := time.Now().UTC()
	messages := []notification.Message{
		{
			ID:            uuid.NewString(),
			Kind:          notification.KindTransferDebit,
			Destination:   t.FromID,
			TransactionID: res.TransactionID,
			Body:          fmt.Sprintf("Account %s was debited %s. Now it has balance: %s", t.FromID, amount, res.FromBalance),
			CreatedAt:     now,
		},
		{
			ID:            uuid.NewString(),
			Kind:          notification.KindTransferCredit,
			Destination:   t.ToID,
			TransactionID: res.TransactionID,
			Body:          fmt.Sprintf("Account %s was credited %s. Now it has balance: %s", t.ToID, amount, res.ToBalance),
			CreatedAt:     now,
		},
	}
	for _, msg := range messages {
		if err := s.notifier.Send(ctx, msg); err != nil {
			log.Warn("transfer notification failed",
				slog.String("kind", msg.Kind),
				slog.String("destination", msg.Destination),
				slog.Any("error", err),
			)
		}
	}
}

// History lists committed transfers touching accountID, newest first. It
// returns an account.ErrNotFound wrap for unknown accounts.
func (s *Service) History(ctx context.Context, accountID string, limit int) ([]ledger.Posting, error) {
	if _, err := s.accounts.Get(ctx, accountID); err != nil {
		return nil, err
	}
	if s.journal == nil {
		return []ledger.Posting{}, nil
	}
	return s.journal.History(ctx, accountID, limit)
}

func (s *Service) abort(log *slog.Logger, accountID string, cause error) error {
	return s.fail(log, StageLocking, fmt.Errorf("%w: %s on account %s: %w", ErrAborted, StageLocking, accountID, cause))
}

func (s *Service) fail(log *slog.Logger, stage Stage, err error) error {
	log.Info("transfer failed",
		slog.String("stage", string(stage)),
		slog.String("next_stage", string(StageFailed)),
		slog.Any("error", err),
	)
	return err
}

// snapshot serves the authoritative pass from the accounts read under the guards.
type snapshot map[string]account.Account

func (s snapshot) Get(_ context.Context, id string) (account.Account, error) {
	a, ok := s[id]
	if !ok {
		return account.Account{}, fmt.Errorf("account id %s: %w", id, account.ErrNotFound)
	}
	return a, nil
}
