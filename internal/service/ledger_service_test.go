package service

import (
	"context"
	"slices"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/sharedpot/internal/api"
	"github.com/mmynk/sharedpot/internal/events"
	"github.com/mmynk/sharedpot/internal/ledger"
	"github.com/mmynk/sharedpot/internal/money"
)

func TestEveningBalancesAndDebts(t *testing.T) {
	env := setupTestServer(t)
	token := env.register(t, "alice@example.com")
	ledgerID := env.createLedger(t, token, "Evening")
	env.addEvening(t, token, ledgerID)

	resp, err := env.ledgers.GetBalances(context.Background(), authed(token, &api.GetBalancesRequest{LedgerID: ledgerID}))
	if err != nil {
		t.Fatalf("GetBalances failed: %v", err)
	}
	want := []api.Balance{
		{Person: "Alice", Items: api.NewMoney(3500), Payments: api.NewMoney(6000), Net: api.NewMoney(-2500)},
		{Person: "Bob", Items: api.NewMoney(4500), Payments: api.NewMoney(2000), Net: api.NewMoney(2500)},
	}
	if !slices.Equal(resp.Msg.Balances, want) {
		t.Errorf("balances = %+v, want %+v", resp.Msg.Balances, want)
	}
	if want := "-25.00"; resp.Msg.Balances[0].Net.Amount != want {
		t.Errorf("rendered net = %q, want %q", resp.Msg.Balances[0].Net.Amount, want)
	}

	debts := env.debts(t, token, ledgerID)
	wantDebts := []api.Debt{{Debtor: "Bob", Creditor: "Alice", Amount: api.NewMoney(2500)}}
	if !slices.Equal(debts, wantDebts) {
		t.Errorf("debts = %+v, want %+v", debts, wantDebts)
	}
}

func TestRefunds(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		want   []api.Debt
	}{
		{"full", "25.00", []api.Debt{}},
		{"partial", "5", []api.Debt{{Debtor: "Bob", Creditor: "Alice", Amount: api.NewMoney(2000)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestServer(t)
			token := env.register(t, "alice@example.com")
			ledgerID := env.createLedger(t, token, "Evening")
			env.addEvening(t, token, ledgerID)

			resp, err := env.ledgers.AddRefund(context.Background(), authed(token, &api.AddRefundRequest{
				LedgerID: ledgerID,
				Debit:    "Bob",
				Credit:   "Alice",
				Amount:   tt.amount,
			}))
			if err != nil {
				t.Fatalf("AddRefund failed: %v", err)
			}
			if resp.Msg.Transaction.Label != "Refund to Alice" || resp.Msg.Transaction.Kind != "refund" {
				t.Errorf("unexpected refund: %+v", resp.Msg.Transaction)
			}

			if got := env.debts(t, token, ledgerID); !slices.Equal(got, tt.want) {
				t.Errorf("debts = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestAddOutlayReportsShortfall(t *testing.T) {
	env := setupTestServer(t)
	token := env.register(t, "alice@example.com")
	ledgerID := env.createLedger(t, token, "Taxi")

	resp, err := env.ledgers.AddOutlay(context.Background(), authed(token, &api.AddOutlayRequest{
		LedgerID:     ledgerID,
		Label:        "Taxi",
		Participants: persons("Alice"),
		Payments:     []api.PaymentInput{{Amount: "20.00", Participants: persons("Bob")}},
	}))
	if err != nil {
		t.Fatalf("AddOutlay failed: %v", err)
	}
	tx := resp.Msg.Transaction
	if tx.ShortfallSide != "items" || tx.Shortfall.Cents != 2000 {
		t.Errorf("shortfall = %s %d, want items 2000", tx.ShortfallSide, tx.Shortfall.Cents)
	}
	if !slices.Equal(tx.Participants, []string{"Alice", "Bob"}) {
		t.Errorf("participants = %v, want [Alice Bob]", tx.Participants)
	}
	if tx.Date.IsZero() {
		t.Error("expected date to default to now")
	}

	want := []api.Debt{{Debtor: "Alice", Creditor: "Bob", Amount: api.NewMoney(1000)}}
	if got := env.debts(t, token, ledgerID); !slices.Equal(got, want) {
		t.Errorf("debts = %+v, want %+v", got, want)
	}
}

func TestAddOutlayValidation(t *testing.T) {
	env := setupTestServer(t)
	token := env.register(t, "alice@example.com")
	ledgerID := env.createLedger(t, token, "Trip")

	tests := []struct {
		name string
		req  *api.AddOutlayRequest
	}{
		{
			name: "missing label",
			req: &api.AddOutlayRequest{LedgerID: ledgerID, Payments: []api.PaymentInput{
				{Amount: "1", Participants: persons("Alice")},
			}},
		},
		{
			name: "negative amount",
			req: &api.AddOutlayRequest{LedgerID: ledgerID, Label: "x", Items: []api.ItemInput{
				{Label: "a", Amount: "-1", Participants: persons("Alice")},
			}},
		},
		{
			name: "too many decimals",
			req: &api.AddOutlayRequest{LedgerID: ledgerID, Label: "x", Items: []api.ItemInput{
				{Label: "a", Amount: "1.005", Participants: persons("Alice")},
			}},
		},
		{
			name: "payment without participants",
			req: &api.AddOutlayRequest{LedgerID: ledgerID, Label: "x", Participants: persons("Alice"), Payments: []api.PaymentInput{
				{Amount: "10"},
			}},
		},
		{
			name: "no participants at all",
			req:  &api.AddOutlayRequest{LedgerID: ledgerID, Label: "x"},
		},
		{
			name: "duplicate item",
			req: &api.AddOutlayRequest{LedgerID: ledgerID, Label: "x", Items: []api.ItemInput{
				{Label: "Beer", Amount: "5", Participants: persons("Bob")},
				{Label: "Beer", Amount: "5", Participants: persons("Bob")},
			}},
		},
		{
			name: "missing ledger id",
			req:  &api.AddOutlayRequest{Label: "x"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.ledgers.AddOutlay(context.Background(), authed(token, tt.req))
			assertCode(t, err, connect.CodeInvalidArgument)
		})
	}
}

func TestHugeAmountsLeaveLedgerIntact(t *testing.T) {
	env := setupTestServer(t)
	token := env.register(t, "alice@example.com")
	ledgerID := env.createLedger(t, token, "Yacht")
	ctx := context.Background()

	_, err := env.ledgers.AddOutlay(ctx, authed(token, &api.AddOutlayRequest{
		LedgerID: ledgerID,
		Label:    "Yacht",
		Payments: []api.PaymentInput{
			{Amount: "92233720368547758.07", Participants: persons("Alice")},
			{Amount: "92233720368547758.07", Participants: persons("Bob")},
		},
	}))
	assertCode(t, err, connect.CodeInvalidArgument)

	_, err = env.ledgers.AddRefund(ctx, authed(token, &api.AddRefundRequest{
		LedgerID: ledgerID,
		Debit:    "Bob",
		Credit:   "Alice",
		Amount:   "100000000000.01",
	}))
	assertCode(t, err, connect.CodeInvalidArgument)

	_, err = env.ledgers.AddOutlay(ctx, authed(token, &api.AddOutlayRequest{
		LedgerID: ledgerID,
		Label:    "Yacht",
		Items:    []api.ItemInput{{Label: "hull", Amount: "100000000000", Participants: persons("Alice", "Bob")}},
		Payments: []api.PaymentInput{
			{Amount: "100000000000", Participants: persons("Alice")},
			{Amount: "100000000000", Participants: persons("Bob")},
		},
	}))
	if err != nil {
		t.Fatalf("AddOutlay at the limit failed: %v", err)
	}

	list, err := env.ledgers.ListTransactions(ctx, authed(token, &api.ListTransactionsRequest{LedgerID: ledgerID}))
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if len(list.Msg.Transactions) != 1 {
		t.Fatalf("stored %d transactions, want 1", len(list.Msg.Transactions))
	}

	resp, err := env.ledgers.GetBalances(ctx, authed(token, &api.GetBalancesRequest{LedgerID: ledgerID}))
	if err != nil {
		t.Fatalf("GetBalances failed: %v", err)
	}
	for _, b := range resp.Msg.Balances {
		if b.Net.Cents != 0 || b.Payments.Cents != money.MaxCents {
			t.Errorf("balance of %s = %+v, want net 0 and payments %d", b.Person, b, money.MaxCents)
		}
	}
	if debts := env.debts(t, token, ledgerID); len(debts) != 0 {
		t.Errorf("debts = %+v, want none", debts)
	}
}

func TestListTransactionsMatchesEachRecord(t *testing.T) {
	env := setupTestServer(t)
	token := env.register(t, "alice@example.com")
	ledgerID := env.createLedger(t, token, "Week")
	ctx := context.Background()

	outlays := []struct {
		label     string
		payer     string
		paid      string
		eaters    ledger.Persons
		side      string
		shortfall int64
	}{
		{"Monday", "Alice", "30", persons("Alice", "Bob"), "items", 3000},
		{"Tuesday", "Bob", "10", persons("Bob", "Carol"), "items", 1000},
		{"Wednesday", "Carol", "0", persons("Alice", "Dave"), "payments", 4000},
	}
	for i, o := range outlays {
		req := &api.AddOutlayRequest{
			LedgerID:     ledgerID,
			Label:        o.label,
			Date:         time.Date(2024, 5, 6+i, 12, 0, 0, 0, time.UTC),
			Participants: o.eaters,
			Payments:     []api.PaymentInput{{Amount: o.paid, Participants: persons(o.payer)}},
		}
		if o.side == "payments" {
			req.Items = []api.ItemInput{{Label: "lunch", Amount: "40", Participants: o.eaters}}
		}
		if _, err := env.ledgers.AddOutlay(ctx, authed(token, req)); err != nil {
			t.Fatalf("AddOutlay(%s) failed: %v", o.label, err)
		}
	}

	list, err := env.ledgers.ListTransactions(ctx, authed(token, &api.ListTransactionsRequest{LedgerID: ledgerID}))
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	txs := list.Msg.Transactions
	if len(txs) != len(outlays) {
		t.Fatalf("got %d transactions, want %d", len(txs), len(outlays))
	}
	for i, o := range outlays {
		got := txs[i]
		if got.Label != o.label {
			t.Errorf("txs[%d].Label = %q, want %q", i, got.Label, o.label)
		}
		if got.ShortfallSide != o.side || got.Shortfall.Cents != o.shortfall {
			t.Errorf("%s shortfall = %s %d, want %s %d", o.label, got.ShortfallSide, got.Shortfall.Cents, o.side, o.shortfall)
		}
		if !slices.Contains(got.Participants, o.payer) {
			t.Errorf("%s participants = %v, want %s among them", o.label, got.Participants, o.payer)
		}
	}
}

func TestParticipantsMustBeAList(t *testing.T) {
	env := setupTestServer(t)
	token := env.register(t, "alice@example.com")
	ledgerID := env.createLedger(t, token, "Trip")

	// Raw bodies, since the typed client cannot produce these.
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bare string", `{"ledger_id":"` + ledgerID + `","label":"x","participants":"Alice"}`, "invalid_argument"},
		{"blank name", `{"ledger_id":"` + ledgerID + `","label":"x","participants":["  "]}`, "invalid_argument"},
		{"list", `{"ledger_id":"` + ledgerID + `","label":"x","participants":["Alice"]}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := postJSON(t, env, token, api.LedgerServiceAddOutlayProcedure, tt.body); got != tt.want {
				t.Errorf("code = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOwnership(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register(t, "alice@example.com")
	mallory := env.register(t, "mallory@example.com")
	ledgerID := env.createLedger(t, alice, "Private")
	ctx := context.Background()

	_, err := env.ledgers.GetDebts(ctx, authed(mallory, &api.GetDebtsRequest{LedgerID: ledgerID}))
	assertCode(t, err, connect.CodePermissionDenied)

	_, err = env.ledgers.DeleteLedger(ctx, authed(mallory, &api.DeleteLedgerRequest{LedgerID: ledgerID}))
	assertCode(t, err, connect.CodePermissionDenied)

	list, err := env.ledgers.ListLedgers(ctx, authed(mallory, &api.ListLedgersRequest{}))
	if err != nil {
		t.Fatalf("ListLedgers failed: %v", err)
	}
	if len(list.Msg.Ledgers) != 0 {
		t.Errorf("mallory sees %d ledgers, want 0", len(list.Msg.Ledgers))
	}

	_, err = env.ledgers.GetLedger(ctx, connect.NewRequest(&api.GetLedgerRequest{LedgerID: ledgerID}))
	assertCode(t, err, connect.CodeUnauthenticated)

	_, err = env.ledgers.GetLedger(ctx, authed(alice, &api.GetLedgerRequest{LedgerID: "missing"}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestLedgerLifecycle(t *testing.T) {
	env := setupTestServer(t)
	token := env.register(t, "alice@example.com")
	ctx := context.Background()

	_, err := env.ledgers.CreateLedger(ctx, authed(token, &api.CreateLedgerRequest{Name: "  "}))
	assertCode(t, err, connect.CodeInvalidArgument)

	ledgerID := env.createLedger(t, token, "Evening")
	env.addEvening(t, token, ledgerID)

	got, err := env.ledgers.GetLedger(ctx, authed(token, &api.GetLedgerRequest{LedgerID: ledgerID}))
	if err != nil {
		t.Fatalf("GetLedger failed: %v", err)
	}
	if got.Msg.Ledger.Name != "Evening" || !slices.Equal(got.Msg.Persons, []string{"Alice", "Bob"}) {
		t.Errorf("unexpected ledger: %+v", got.Msg)
	}

	list, err := env.ledgers.ListTransactions(ctx, authed(token, &api.ListTransactionsRequest{LedgerID: ledgerID}))
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	txs := list.Msg.Transactions
	if len(txs) != 2 || txs[0].Label != "Restaurant le Grizzli" || txs[1].Label != "Cinema" {
		t.Fatalf("unexpected transactions: %+v", txs)
	}
	if len(txs[0].Items) != 4 || txs[0].Items[3].Amount.Cents != 1000 {
		t.Errorf("restaurant items not round-tripped: %+v", txs[0].Items)
	}
	if !txs[0].Date.Equal(time.Date(2010, 3, 15, 20, 0, 0, 0, time.UTC)) {
		t.Errorf("date = %v", txs[0].Date)
	}

	// Without the cinema Bob owes his whole restaurant bill.
	_, err = env.ledgers.DeleteTransaction(ctx, authed(token, &api.DeleteTransactionRequest{
		LedgerID:      ledgerID,
		TransactionID: txs[1].ID,
	}))
	if err != nil {
		t.Fatalf("DeleteTransaction failed: %v", err)
	}
	want := []api.Debt{{Debtor: "Bob", Creditor: "Alice", Amount: api.NewMoney(3500)}}
	if got := env.debts(t, token, ledgerID); !slices.Equal(got, want) {
		t.Errorf("debts = %+v, want %+v", got, want)
	}

	_, err = env.ledgers.DeleteTransaction(ctx, authed(token, &api.DeleteTransactionRequest{
		LedgerID:      ledgerID,
		TransactionID: txs[1].ID,
	}))
	assertCode(t, err, connect.CodeNotFound)

	if _, err := env.ledgers.DeleteLedger(ctx, authed(token, &api.DeleteLedgerRequest{LedgerID: ledgerID})); err != nil {
		t.Fatalf("DeleteLedger failed: %v", err)
	}
	_, err = env.ledgers.GetLedger(ctx, authed(token, &api.GetLedgerRequest{LedgerID: ledgerID}))
	assertCode(t, err, connect.CodeNotFound)

	wantEvents := []string{events.TransactionRecorded, events.TransactionRecorded, events.TransactionDeleted}
	if got := env.published.types(); !slices.Equal(got, wantEvents) {
		t.Errorf("events = %v, want %v", got, wantEvents)
	}
}

func TestEmptyLedgerHasNoDebts(t *testing.T) {
	env := setupTestServer(t)
	token := env.register(t, "alice@example.com")
	ledgerID := env.createLedger(t, token, "Empty")

	if got := env.debts(t, token, ledgerID); len(got) != 0 {
		t.Errorf("debts = %+v, want none", got)
	}
}

func TestGetStatements(t *testing.T) {
	env := setupTestServer(t)
	token := env.register(t, "alice@example.com")
	ledgerID := env.createLedger(t, token, "Evening")
	env.addEvening(t, token, ledgerID)
	ctx := context.Background()

	resp, err := env.ledgers.GetStatements(ctx, authed(token, &api.GetStatementsRequest{LedgerID: ledgerID, Person: "Bob"}))
	if err != nil {
		t.Fatalf("GetStatements failed: %v", err)
	}
	if len(resp.Msg.Statements) != 1 {
		t.Fatalf("got %d persons, want 1", len(resp.Msg.Statements))
	}
	bob := resp.Msg.Statements[0]
	if bob.Person != "Bob" || len(bob.Items) != 2 || len(bob.Payments) != 1 {
		t.Fatalf("unexpected statements: %+v", bob)
	}
	var consumed int64
	for _, st := range bob.Items {
		consumed += st.Share.Cents
	}
	if consumed != 4500 {
		t.Errorf("Bob consumed %d, want 4500", consumed)
	}
	if bob.Payments[0].Label != "Cinema" || bob.Payments[0].Share.Cents != 2000 {
		t.Errorf("unexpected payment statement: %+v", bob.Payments[0])
	}

	all, err := env.ledgers.GetStatements(ctx, authed(token, &api.GetStatementsRequest{LedgerID: ledgerID}))
	if err != nil {
		t.Fatalf("GetStatements failed: %v", err)
	}
	if len(all.Msg.Statements) != 2 || all.Msg.Statements[0].Person != "Alice" {
		t.Errorf("unexpected statements: %+v", all.Msg.Statements)
	}

	_, err = env.ledgers.GetStatements(ctx, authed(token, &api.GetStatementsRequest{LedgerID: ledgerID, Person: "Zoe"}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestSettleDebt(t *testing.T) {
	env := setupTestServer(t)
	token := env.register(t, "alice@example.com")
	ledgerID := env.createLedger(t, token, "Evening")
	env.addEvening(t, token, ledgerID)
	ctx := context.Background()

	_, err := env.ledgers.SettleDebt(ctx, authed(token, &api.SettleDebtRequest{
		LedgerID: ledgerID, Debtor: "Alice", Creditor: "Bob",
	}))
	assertCode(t, err, connect.CodeFailedPrecondition)

	_, err = env.ledgers.SettleDebt(ctx, authed(token, &api.SettleDebtRequest{
		LedgerID: ledgerID, Debtor: "Bob", Creditor: "Alice", Amount: "30.00",
	}))
	assertCode(t, err, connect.CodeInvalidArgument)

	partial, err := env.ledgers.SettleDebt(ctx, authed(token, &api.SettleDebtRequest{
		LedgerID: ledgerID, Debtor: "Bob", Creditor: "Alice", Amount: "10.00",
	}))
	if err != nil {
		t.Fatalf("SettleDebt failed: %v", err)
	}
	want := []api.Debt{{Debtor: "Bob", Creditor: "Alice", Amount: api.NewMoney(1500)}}
	if !slices.Equal(partial.Msg.Debts, want) {
		t.Errorf("remaining debts = %+v, want %+v", partial.Msg.Debts, want)
	}

	full, err := env.ledgers.SettleDebt(ctx, authed(token, &api.SettleDebtRequest{
		LedgerID: ledgerID, Debtor: "Bob", Creditor: "Alice",
	}))
	if err != nil {
		t.Fatalf("SettleDebt failed: %v", err)
	}
	if len(full.Msg.Debts) != 0 {
		t.Errorf("remaining debts = %+v, want none", full.Msg.Debts)
	}
	if full.Msg.Transaction.Items[0].Amount.Cents != 1500 {
		t.Errorf("settled %d, want 1500", full.Msg.Transaction.Items[0].Amount.Cents)
	}
	if got := env.debts(t, token, ledgerID); len(got) != 0 {
		t.Errorf("stored debts = %+v, want none", got)
	}

	types := env.published.types()
	if n := len(types); n < 2 || types[n-1] != events.DebtSettled || types[n-2] != events.DebtSettled {
		t.Errorf("events = %v, want trailing debt.settled", types)
	}
}
