package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/sharedpot/internal/api"
	"github.com/mmynk/sharedpot/internal/auth"
	"github.com/mmynk/sharedpot/internal/events"
	"github.com/mmynk/sharedpot/internal/ledger"
	"github.com/mmynk/sharedpot/internal/metrics"
	"github.com/mmynk/sharedpot/internal/middleware"
	"github.com/mmynk/sharedpot/internal/models"
	"github.com/mmynk/sharedpot/internal/money"
	"github.com/mmynk/sharedpot/internal/storage"
)

// LedgerService implements api.LedgerServiceHandler. It keeps no state of
// its own: every call loads the ledger's records, rebuilds the engine value
// and asks it for totals, balances or debts.
type LedgerService struct {
	store     storage.Store
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

var _ api.LedgerServiceHandler = (*LedgerService)(nil)

// NewLedgerService returns a service over store. publisher and m may be nil.
func NewLedgerService(store storage.Store, publisher events.Publisher, m *metrics.Metrics, logger *slog.Logger) *LedgerService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &LedgerService{
		store:     store,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

// loaded is a ledger's records with the engine values built from them.
// txs[i] and transactions[i] describe the same transaction.
type loaded struct {
	record       *models.Ledger
	txs          []*models.Transaction
	transactions []*ledger.Transaction
	engine       *ledger.Ledger
}

// ownedLedger fetches a ledger and checks the caller owns it.
func (s *LedgerService) ownedLedger(ctx context.Context, ledgerID string) (*models.Ledger, error) {
	if ledgerID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errLedgerIDRequired)
	}
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	l, err := s.store.GetLedger(ctx, ledgerID)
	if err != nil {
		return nil, err
	}
	if l.OwnerID != userID {
		return nil, connect.NewError(connect.CodePermissionDenied, errNotOwner)
	}
	return l, nil
}

func (s *LedgerService) load(ctx context.Context, ledgerID string) (*loaded, error) {
	record, err := s.ownedLedger(ctx, ledgerID)
	if err != nil {
		return nil, err
	}
	txs, err := s.store.ListTransactions(ctx, ledgerID)
	if err != nil {
		return nil, err
	}
	engine, err := buildLedger(record.Name, txs)
	if err != nil {
		return nil, err
	}
	return &loaded{
		record:       record,
		txs:          txs,
		transactions: engine.Transactions(),
		engine:       engine,
	}, nil
}

func callerID(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return userID, nil
}

// date defaults a zero time to now and truncates to the stored precision.
func (s *LedgerService) date(t time.Time) time.Time {
	if t.IsZero() {
		t = s.now()
	}
	return time.Unix(t.Unix(), 0).UTC()
}

func (s *LedgerService) publish(ctx context.Context, e events.Event) {
	e.OccurredAt = s.now().UTC()
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn("Failed to publish event", "type", e.Type, "ledger_id", e.LedgerID, "error", err)
	}
}

// record adds t to the loaded ledger, persists it, updates metrics and
// publishes e. Nothing is stored if the ledger's totals can no longer be
// computed with t in it.
func (s *LedgerService) record(ctx context.Context, l *loaded, t *ledger.Transaction, e events.Event) (*models.Transaction, error) {
	side, shortfall, err := t.Shortfall()
	if err != nil {
		return nil, err
	}
	l.engine.Add(t)
	if _, _, err := l.engine.ComputeTotals(); err != nil {
		l.engine.Remove(t)
		return nil, err
	}

	ledgerID := l.record.ID
	m := toModelTransaction(ledgerID, t)
	if err := s.store.CreateTransaction(ctx, m); err != nil {
		return nil, err
	}
	s.metrics.AddShortfall(string(side), shortfall)

	e.LedgerID = ledgerID
	e.TransactionID = m.ID
	e.Kind = m.Kind
	e.Label = m.Label
	e.Amount = decimal.New(t.Amount(), -2)
	s.publish(ctx, e)
	return m, nil
}

// CreateLedger creates an empty ledger owned by the caller.
func (s *LedgerService) CreateLedger(ctx context.Context, req *connect.Request[api.CreateLedgerRequest]) (*connect.Response[api.CreateLedgerResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("name required"))
	}

	l := &models.Ledger{Name: name, OwnerID: userID}
	if err := s.store.CreateLedger(ctx, l); err != nil {
		return nil, toConnectError(s.logger, "CreateLedger", err)
	}

	s.logger.Info("Ledger created", "ledger_id", l.ID, "name", l.Name, "user_id", userID)
	return connect.NewResponse(&api.CreateLedgerResponse{Ledger: toAPILedger(l)}), nil
}

// GetLedger returns a ledger and everyone taking part in it.
func (s *LedgerService) GetLedger(ctx context.Context, req *connect.Request[api.GetLedgerRequest]) (*connect.Response[api.GetLedgerResponse], error) {
	l, err := s.load(ctx, req.Msg.LedgerID)
	if err != nil {
		return nil, toConnectError(s.logger, "GetLedger", err)
	}
	return connect.NewResponse(&api.GetLedgerResponse{
		Ledger:  toAPILedger(l.record),
		Persons: l.engine.Persons().Names(),
	}), nil
}

// ListLedgers returns the caller's ledgers, newest first.
func (s *LedgerService) ListLedgers(ctx context.Context, req *connect.Request[api.ListLedgersRequest]) (*connect.Response[api.ListLedgersResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	records, err := s.store.ListLedgers(ctx, userID)
	if err != nil {
		return nil, toConnectError(s.logger, "ListLedgers", err)
	}

	ledgers := make([]api.Ledger, len(records))
	for i, l := range records {
		ledgers[i] = toAPILedger(l)
	}
	return connect.NewResponse(&api.ListLedgersResponse{Ledgers: ledgers}), nil
}

// DeleteLedger removes a ledger with all its transactions.
func (s *LedgerService) DeleteLedger(ctx context.Context, req *connect.Request[api.DeleteLedgerRequest]) (*connect.Response[api.DeleteLedgerResponse], error) {
	l, err := s.ownedLedger(ctx, req.Msg.LedgerID)
	if err != nil {
		return nil, toConnectError(s.logger, "DeleteLedger", err)
	}
	if err := s.store.DeleteLedger(ctx, l.ID); err != nil {
		return nil, toConnectError(s.logger, "DeleteLedger", err)
	}

	s.logger.Info("Ledger deleted", "ledger_id", l.ID)
	return connect.NewResponse(&api.DeleteLedgerResponse{}), nil
}

// AddOutlay records a shared purchase. Items and payments need not balance:
// the short side is topped up among all participants when totals are
// computed, and the response reports by how much.
func (s *LedgerService) AddOutlay(ctx context.Context, req *connect.Request[api.AddOutlayRequest]) (*connect.Response[api.AddOutlayResponse], error) {
	msg := req.Msg
	l, err := s.load(ctx, msg.LedgerID)
	if err != nil {
		return nil, toConnectError(s.logger, "AddOutlay", err)
	}

	t, err := s.newOutlay(msg)
	if err != nil {
		return nil, toConnectError(s.logger, "AddOutlay", err)
	}
	m, err := s.record(ctx, l, t, events.Event{Type: events.TransactionRecorded})
	if err != nil {
		return nil, toConnectError(s.logger, "AddOutlay", err)
	}
	out, err := toAPITransaction(m, t)
	if err != nil {
		return nil, toConnectError(s.logger, "AddOutlay", err)
	}

	s.logger.Info("Outlay recorded",
		"ledger_id", msg.LedgerID,
		"transaction_id", m.ID,
		"label", m.Label,
		"items", len(m.Items),
		"payments", len(m.Payments),
	)
	return connect.NewResponse(&api.AddOutlayResponse{Transaction: out}), nil
}

func (s *LedgerService) newOutlay(msg *api.AddOutlayRequest) (*ledger.Transaction, error) {
	label := strings.TrimSpace(msg.Label)
	if label == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("label required"))
	}

	t := ledger.NewOutlay(s.date(msg.Date), label)
	if err := t.AddPersons(msg.Participants...); err != nil {
		return nil, err
	}
	for _, in := range msg.Items {
		cents, err := money.ParseCents(in.Amount)
		if err != nil {
			return nil, fmt.Errorf("item %q: %w", in.Label, err)
		}
		item, err := ledger.NewItem(strings.TrimSpace(in.Label), cents, in.Participants...)
		if err != nil {
			return nil, err
		}
		n := len(t.Items())
		if err := t.AddItem(item); err != nil {
			return nil, err
		}
		if len(t.Items()) == n {
			return nil, fmt.Errorf("%w: duplicate item %q", ledger.ErrInvalidSplit, item.Label)
		}
	}
	for _, in := range msg.Payments {
		cents, err := money.ParseCents(in.Amount)
		if err != nil {
			return nil, fmt.Errorf("payment: %w", err)
		}
		payment, err := ledger.NewPayment(cents, in.Participants...)
		if err != nil {
			return nil, err
		}
		if err := t.AddPayment(payment); err != nil {
			return nil, err
		}
	}

	if len(t.Participants()) == 0 {
		return nil, fmt.Errorf("%w: outlay has no participants", ledger.ErrInvalidParticipants)
	}
	// Surfaces splits without participants before anything is stored.
	if _, _, err := t.Reconciled(); err != nil {
		return nil, err
	}
	return t, nil
}

// AddRefund records a direct reimbursement.
func (s *LedgerService) AddRefund(ctx context.Context, req *connect.Request[api.AddRefundRequest]) (*connect.Response[api.AddRefundResponse], error) {
	msg := req.Msg
	l, err := s.load(ctx, msg.LedgerID)
	if err != nil {
		return nil, toConnectError(s.logger, "AddRefund", err)
	}

	debit, credit, err := refundParties(msg.Debit, msg.Credit)
	if err != nil {
		return nil, toConnectError(s.logger, "AddRefund", err)
	}
	cents, err := positiveCents(msg.Amount)
	if err != nil {
		return nil, toConnectError(s.logger, "AddRefund", err)
	}
	t, err := ledger.NewRefund(s.date(msg.Date), debit, cents, credit)
	if err != nil {
		return nil, toConnectError(s.logger, "AddRefund", err)
	}

	m, err := s.record(ctx, l, t, events.Event{
		Type:     events.TransactionRecorded,
		Debtor:   debit.Name,
		Creditor: credit.Name,
	})
	if err != nil {
		return nil, toConnectError(s.logger, "AddRefund", err)
	}
	out, err := toAPITransaction(m, t)
	if err != nil {
		return nil, toConnectError(s.logger, "AddRefund", err)
	}

	s.logger.Info("Refund recorded",
		"ledger_id", msg.LedgerID,
		"transaction_id", m.ID,
		"debit", debit.Name,
		"credit", credit.Name,
		"amount", money.FormatCents(cents),
	)
	return connect.NewResponse(&api.AddRefundResponse{Transaction: out}), nil
}

func refundParties(debitName, creditName string) (ledger.Person, ledger.Person, error) {
	debit, err := ledger.NewPerson(debitName)
	if err != nil {
		return ledger.Person{}, ledger.Person{}, err
	}
	credit, err := ledger.NewPerson(creditName)
	if err != nil {
		return ledger.Person{}, ledger.Person{}, err
	}
	if debit == credit {
		return ledger.Person{}, ledger.Person{}, fmt.Errorf("%w: %s cannot refund themselves", ledger.ErrInvalidParticipants, debit)
	}
	return debit, credit, nil
}

func positiveCents(amount string) (int64, error) {
	cents, err := money.ParseCents(amount)
	if err != nil {
		return 0, err
	}
	if cents == 0 {
		return 0, fmt.Errorf("%w: amount must be positive", money.ErrInvalidAmount)
	}
	return cents, nil
}

// DeleteTransaction removes one transaction from a ledger.
func (s *LedgerService) DeleteTransaction(ctx context.Context, req *connect.Request[api.DeleteTransactionRequest]) (*connect.Response[api.DeleteTransactionResponse], error) {
	msg := req.Msg
	if _, err := s.ownedLedger(ctx, msg.LedgerID); err != nil {
		return nil, toConnectError(s.logger, "DeleteTransaction", err)
	}

	m, err := s.store.GetTransaction(ctx, msg.TransactionID)
	if err != nil {
		return nil, toConnectError(s.logger, "DeleteTransaction", err)
	}
	if m.LedgerID != msg.LedgerID {
		err := fmt.Errorf("transaction %s: %w", msg.TransactionID, storage.ErrNotFound)
		return nil, toConnectError(s.logger, "DeleteTransaction", err)
	}
	if err := s.store.DeleteTransaction(ctx, m.ID); err != nil {
		return nil, toConnectError(s.logger, "DeleteTransaction", err)
	}

	s.publish(ctx, events.Event{
		Type:          events.TransactionDeleted,
		LedgerID:      m.LedgerID,
		TransactionID: m.ID,
		Kind:          m.Kind,
		Label:         m.Label,
	})
	s.logger.Info("Transaction deleted", "ledger_id", m.LedgerID, "transaction_id", m.ID)
	return connect.NewResponse(&api.DeleteTransactionResponse{}), nil
}

// ListTransactions returns a ledger's transactions in date order.
func (s *LedgerService) ListTransactions(ctx context.Context, req *connect.Request[api.ListTransactionsRequest]) (*connect.Response[api.ListTransactionsResponse], error) {
	l, err := s.load(ctx, req.Msg.LedgerID)
	if err != nil {
		return nil, toConnectError(s.logger, "ListTransactions", err)
	}

	out := make([]api.Transaction, len(l.txs))
	for i, m := range l.txs {
		if out[i], err = toAPITransaction(m, l.transactions[i]); err != nil {
			return nil, toConnectError(s.logger, "ListTransactions", err)
		}
	}
	return connect.NewResponse(&api.ListTransactionsResponse{Transactions: out}), nil
}

// GetBalances returns every person's reconciled totals and net balance.
func (s *LedgerService) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	l, err := s.load(ctx, req.Msg.LedgerID)
	if err != nil {
		return nil, toConnectError(s.logger, "GetBalances", err)
	}
	items, payments, err := l.engine.ComputeTotals()
	if err != nil {
		return nil, toConnectError(s.logger, "GetBalances", err)
	}
	net := ledger.Balances(items, payments)
	if net.Sum() != 0 {
		err := fmt.Errorf("%w: balances sum to %d", ledger.ErrLedgerCorrupted, net.Sum())
		return nil, toConnectError(s.logger, "GetBalances", err)
	}

	balances := make([]api.Balance, 0, len(net))
	for _, p := range net.Persons() {
		balances = append(balances, api.Balance{
			Person:   p.Name,
			Items:    api.NewMoney(items[p]),
			Payments: api.NewMoney(payments[p]),
			Net:      api.NewMoney(net[p]),
		})
	}
	return connect.NewResponse(&api.GetBalancesResponse{Balances: balances}), nil
}

// GetDebts returns the payments that settle the ledger.
func (s *LedgerService) GetDebts(ctx context.Context, req *connect.Request[api.GetDebtsRequest]) (*connect.Response[api.GetDebtsResponse], error) {
	l, err := s.load(ctx, req.Msg.LedgerID)
	if err != nil {
		return nil, toConnectError(s.logger, "GetDebts", err)
	}
	debts, err := l.engine.ComputeDebts()
	if err != nil {
		return nil, toConnectError(s.logger, "GetDebts", err)
	}
	s.metrics.ObserveSettlement(len(debts))
	return connect.NewResponse(&api.GetDebtsResponse{Debts: toAPIDebts(debts)}), nil
}

// GetStatements returns, per person, what they consumed and what they paid
// in each transaction.
func (s *LedgerService) GetStatements(ctx context.Context, req *connect.Request[api.GetStatementsRequest]) (*connect.Response[api.GetStatementsResponse], error) {
	l, err := s.load(ctx, req.Msg.LedgerID)
	if err != nil {
		return nil, toConnectError(s.logger, "GetStatements", err)
	}

	persons := l.engine.Persons()
	if req.Msg.Person != "" {
		p, err := ledger.NewPerson(req.Msg.Person)
		if err != nil {
			return nil, toConnectError(s.logger, "GetStatements", err)
		}
		if !slices.Contains(persons, p) {
			err := fmt.Errorf("person %q in ledger %s: %w", p.Name, l.record.ID, storage.ErrNotFound)
			return nil, toConnectError(s.logger, "GetStatements", err)
		}
		persons = ledger.Persons{p}
	}

	items, err := l.engine.ItemsPerPerson()
	if err != nil {
		return nil, toConnectError(s.logger, "GetStatements", err)
	}
	payments, err := l.engine.PaymentsPerPerson()
	if err != nil {
		return nil, toConnectError(s.logger, "GetStatements", err)
	}

	out := make([]api.PersonStatements, len(persons))
	for i, p := range persons {
		out[i] = api.PersonStatements{
			Person:   p.Name,
			Items:    toAPIStatements(items[p]),
			Payments: toAPIStatements(payments[p]),
		}
	}
	return connect.NewResponse(&api.GetStatementsResponse{Statements: out}), nil
}

// SettleDebt records a refund from the debtor to the creditor of an
// outstanding debt and returns the debts that remain.
func (s *LedgerService) SettleDebt(ctx context.Context, req *connect.Request[api.SettleDebtRequest]) (*connect.Response[api.SettleDebtResponse], error) {
	msg := req.Msg
	l, err := s.load(ctx, msg.LedgerID)
	if err != nil {
		return nil, toConnectError(s.logger, "SettleDebt", err)
	}
	debtor, creditor, err := refundParties(msg.Debtor, msg.Creditor)
	if err != nil {
		return nil, toConnectError(s.logger, "SettleDebt", err)
	}

	debts, err := l.engine.ComputeDebts()
	if err != nil {
		return nil, toConnectError(s.logger, "SettleDebt", err)
	}
	var owed int64
	for _, d := range debts {
		if d.Debtor == debtor && d.Creditor == creditor {
			owed = d.Amount
			break
		}
	}
	if owed == 0 {
		return nil, connect.NewError(connect.CodeFailedPrecondition,
			fmt.Errorf("%s owes nothing to %s", debtor, creditor))
	}

	cents := owed
	if msg.Amount != "" {
		if cents, err = positiveCents(msg.Amount); err != nil {
			return nil, toConnectError(s.logger, "SettleDebt", err)
		}
		if cents > owed {
			return nil, connect.NewError(connect.CodeInvalidArgument,
				fmt.Errorf("%s owes %s only %s", debtor, creditor, money.FormatCents(owed)))
		}
	}

	t, err := ledger.NewRefund(s.date(msg.Date), debtor, cents, creditor)
	if err != nil {
		return nil, toConnectError(s.logger, "SettleDebt", err)
	}
	m, err := s.record(ctx, l, t, events.Event{
		Type:     events.DebtSettled,
		Debtor:   debtor.Name,
		Creditor: creditor.Name,
	})
	if err != nil {
		return nil, toConnectError(s.logger, "SettleDebt", err)
	}

	remaining, err := l.engine.ComputeDebts()
	if err != nil {
		return nil, toConnectError(s.logger, "SettleDebt", err)
	}
	out, err := toAPITransaction(m, t)
	if err != nil {
		return nil, toConnectError(s.logger, "SettleDebt", err)
	}

	s.logger.Info("Debt settled",
		"ledger_id", msg.LedgerID,
		"debtor", debtor.Name,
		"creditor", creditor.Name,
		"amount", money.FormatCents(cents),
		"remaining_debts", len(remaining),
	)
	return connect.NewResponse(&api.SettleDebtResponse{
		Transaction: out,
		Debts:       toAPIDebts(remaining),
	}), nil
}
