package service

import (
	"fmt"
	"time"

	"github.com/mmynk/sharedpot/internal/api"
	"github.com/mmynk/sharedpot/internal/ledger"
	"github.com/mmynk/sharedpot/internal/models"
)

// toLedgerTransaction rebuilds the engine value for a stored transaction.
func toLedgerTransaction(m *models.Transaction) (*ledger.Transaction, error) {
	date := time.Unix(m.Date, 0).UTC()

	switch m.Kind {
	case models.KindRefund:
		if len(m.Items) != 1 || len(m.Payments) != 1 ||
			len(m.Items[0].Participants) != 1 || len(m.Payments[0].Participants) != 1 {
			return nil, fmt.Errorf("%w: refund %s is malformed", ledger.ErrLedgerCorrupted, m.ID)
		}
		debit, err := ledger.NewPerson(m.Payments[0].Participants[0])
		if err != nil {
			return nil, err
		}
		credit, err := ledger.NewPerson(m.Items[0].Participants[0])
		if err != nil {
			return nil, err
		}
		return ledger.NewRefund(date, debit, m.Payments[0].Amount, credit)

	case models.KindOutlay:
		t := ledger.NewOutlay(date, m.Label)
		persons, err := ledger.PersonsFromNames(m.Participants...)
		if err != nil {
			return nil, err
		}
		if err := t.AddPersons(persons...); err != nil {
			return nil, err
		}
		for _, it := range m.Items {
			ps, err := ledger.PersonsFromNames(it.Participants...)
			if err != nil {
				return nil, err
			}
			item, err := ledger.NewItem(it.Label, it.Amount, ps...)
			if err != nil {
				return nil, err
			}
			if err := t.AddItem(item); err != nil {
				return nil, err
			}
		}
		for _, pm := range m.Payments {
			ps, err := ledger.PersonsFromNames(pm.Participants...)
			if err != nil {
				return nil, err
			}
			payment, err := ledger.NewPayment(pm.Amount, ps...)
			if err != nil {
				return nil, err
			}
			if err := t.AddPayment(payment); err != nil {
				return nil, err
			}
		}
		return t, nil

	default:
		return nil, fmt.Errorf("%w: transaction %s has unknown kind %q", ledger.ErrLedgerCorrupted, m.ID, m.Kind)
	}
}

// buildLedger assembles an engine ledger from stored transactions.
func buildLedger(name string, txs []*models.Transaction) (*ledger.Ledger, error) {
	l := ledger.New(name)
	for _, m := range txs {
		t, err := toLedgerTransaction(m)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: %w", m.ID, err)
		}
		l.Add(t)
	}
	return l, nil
}

// toModelTransaction flattens an engine transaction for storage.
func toModelTransaction(ledgerID string, t *ledger.Transaction) *models.Transaction {
	m := &models.Transaction{
		LedgerID:     ledgerID,
		Kind:         string(t.Kind()),
		Label:        t.Label(),
		Date:         t.Date.Unix(),
		Participants: t.Participants().Names(),
	}
	for _, item := range t.Items() {
		m.Items = append(m.Items, models.Item{
			Label:        item.Label,
			Amount:       item.Total(),
			Participants: item.Participants().Names(),
		})
	}
	for _, payment := range t.Payments() {
		m.Payments = append(m.Payments, models.Payment{
			Amount:       payment.Total(),
			Participants: payment.Participants().Names(),
		})
	}
	return m
}

func toAPILedger(l *models.Ledger) api.Ledger {
	return api.Ledger{
		ID:        l.ID,
		Name:      l.Name,
		CreatedAt: time.Unix(l.CreatedAt, 0).UTC(),
	}
}

func toAPIUser(u *models.User) api.User {
	return api.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   time.Unix(u.CreatedAt, 0).UTC(),
	}
}

// toAPITransaction renders a stored transaction together with its engine
// value, which supplies the participant set and the shortfall.
func toAPITransaction(m *models.Transaction, t *ledger.Transaction) (api.Transaction, error) {
	side, shortfall, err := t.Shortfall()
	if err != nil {
		return api.Transaction{}, err
	}
	out := api.Transaction{
		ID:            m.ID,
		Kind:          string(t.Kind()),
		Label:         t.Label(),
		Date:          t.Date,
		Participants:  t.Participants().Names(),
		Items:         make([]api.Item, 0, len(m.Items)),
		Payments:      make([]api.Payment, 0, len(m.Payments)),
		ShortfallSide: string(side),
		Shortfall:     api.NewMoney(shortfall),
	}
	for _, it := range m.Items {
		out.Items = append(out.Items, api.Item{
			ID:           it.ID,
			Label:        it.Label,
			Amount:       api.NewMoney(it.Amount),
			Participants: it.Participants,
		})
	}
	for _, pm := range m.Payments {
		out.Payments = append(out.Payments, api.Payment{
			ID:           pm.ID,
			Amount:       api.NewMoney(pm.Amount),
			Participants: pm.Participants,
		})
	}
	return out, nil
}

func toAPIDebts(debts []ledger.Debt) []api.Debt {
	out := make([]api.Debt, len(debts))
	for i, d := range debts {
		out[i] = api.Debt{
			Debtor:   d.Debtor.Name,
			Creditor: d.Creditor.Name,
			Amount:   api.NewMoney(d.Amount),
		}
	}
	return out
}

func toAPIStatements(statements []ledger.Statement) []api.Statement {
	out := make([]api.Statement, len(statements))
	for i, st := range statements {
		lines := make([]api.Line, len(st.Lines))
		for j, line := range st.Lines {
			lines[j] = api.Line{Label: line.Label, Amount: api.NewMoney(line.Amount)}
		}
		out[i] = api.Statement{
			Date:  st.Date,
			Label: st.Label,
			Total: api.NewMoney(st.Total),
			Share: api.NewMoney(st.Sum()),
			Lines: lines,
		}
	}
	return out
}
