package api

import (
	"time"

	"github.com/mmynk/sharedpot/internal/ledger"
	"github.com/mmynk/sharedpot/internal/money"
)

// Money is an amount in cents with its decimal rendering.
type Money struct {
	Cents  int64  `json:"cents"`
	Amount string `json:"amount"`
}

// NewMoney renders cents.
func NewMoney(cents int64) Money {
	return Money{Cents: cents, Amount: money.FormatCents(cents)}
}

type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

type Ledger struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Item struct {
	ID           string   `json:"id"`
	Label        string   `json:"label"`
	Amount       Money    `json:"amount"`
	Participants []string `json:"participants"`
}

type Payment struct {
	ID           string   `json:"id"`
	Amount       Money    `json:"amount"`
	Participants []string `json:"participants"`
}

// Transaction is a recorded outlay or refund. Shortfall reports which side
// reconciliation tops up ("items", "payments" or empty) and by how much.
type Transaction struct {
	ID            string    `json:"id"`
	Kind          string    `json:"kind"`
	Label         string    `json:"label"`
	Date          time.Time `json:"date"`
	Participants  []string  `json:"participants"`
	Items         []Item    `json:"items"`
	Payments      []Payment `json:"payments"`
	ShortfallSide string    `json:"shortfall_side,omitempty"`
	Shortfall     Money     `json:"shortfall"`
}

// Balance is one person's position. Positive Net owes; negative is owed.
type Balance struct {
	Person   string `json:"person"`
	Items    Money  `json:"items"`
	Payments Money  `json:"payments"`
	Net      Money  `json:"net"`
}

type Debt struct {
	Debtor   string `json:"debtor"`
	Creditor string `json:"creditor"`
	Amount   Money  `json:"amount"`
}

type Line struct {
	Label  string `json:"label"`
	Amount Money  `json:"amount"`
}

type Statement struct {
	Date  time.Time `json:"date"`
	Label string    `json:"label"`
	Total Money     `json:"total"`
	Share Money     `json:"share"`
	Lines []Line    `json:"lines"`
}

// PersonStatements lists what a person consumed and what they paid.
type PersonStatements struct {
	Person   string      `json:"person"`
	Items    []Statement `json:"items"`
	Payments []Statement `json:"payments"`
}

// ItemInput is an item to record. Amount is a decimal string.
type ItemInput struct {
	Label        string         `json:"label"`
	Amount       string         `json:"amount"`
	Participants ledger.Persons `json:"participants"`
}

// PaymentInput is a payment to record. Amount is a decimal string.
type PaymentInput struct {
	Amount       string         `json:"amount"`
	Participants ledger.Persons `json:"participants"`
}

type CreateLedgerRequest struct {
	Name string `json:"name"`
}

type CreateLedgerResponse struct {
	Ledger Ledger `json:"ledger"`
}

type GetLedgerRequest struct {
	LedgerID string `json:"ledger_id"`
}

type GetLedgerResponse struct {
	Ledger  Ledger   `json:"ledger"`
	Persons []string `json:"persons"`
}

type ListLedgersRequest struct{}

type ListLedgersResponse struct {
	Ledgers []Ledger `json:"ledgers"`
}

type DeleteLedgerRequest struct {
	LedgerID string `json:"ledger_id"`
}

type DeleteLedgerResponse struct{}

// AddOutlayRequest records a shared purchase. Participants may name people
// who neither bought nor paid; everyone in an item or payment is added
// automatically. A zero Date means now.
type AddOutlayRequest struct {
	LedgerID     string         `json:"ledger_id"`
	Label        string         `json:"label"`
	Date         time.Time      `json:"date"`
	Participants ledger.Persons `json:"participants"`
	Items        []ItemInput    `json:"items"`
	Payments     []PaymentInput `json:"payments"`
}

type AddOutlayResponse struct {
	Transaction Transaction `json:"transaction"`
}

// AddRefundRequest records Debit paying Amount directly to Credit.
type AddRefundRequest struct {
	LedgerID string    `json:"ledger_id"`
	Date     time.Time `json:"date"`
	Debit    string    `json:"debit"`
	Credit   string    `json:"credit"`
	Amount   string    `json:"amount"`
}

type AddRefundResponse struct {
	Transaction Transaction `json:"transaction"`
}

type DeleteTransactionRequest struct {
	LedgerID      string `json:"ledger_id"`
	TransactionID string `json:"transaction_id"`
}

type DeleteTransactionResponse struct{}

type ListTransactionsRequest struct {
	LedgerID string `json:"ledger_id"`
}

type ListTransactionsResponse struct {
	Transactions []Transaction `json:"transactions"`
}

type GetBalancesRequest struct {
	LedgerID string `json:"ledger_id"`
}

type GetBalancesResponse struct {
	Balances []Balance `json:"balances"`
}

type GetDebtsRequest struct {
	LedgerID string `json:"ledger_id"`
}

type GetDebtsResponse struct {
	Debts []Debt `json:"debts"`
}

// GetStatementsRequest asks for per-person statements. An empty Person
// returns everyone.
type GetStatementsRequest struct {
	LedgerID string `json:"ledger_id"`
	Person   string `json:"person"`
}

type GetStatementsResponse struct {
	Statements []PersonStatements `json:"statements"`
}

// SettleDebtRequest records a refund that pays off a debt between Debtor
// and Creditor. An empty Amount pays the full outstanding debt.
type SettleDebtRequest struct {
	LedgerID string    `json:"ledger_id"`
	Debtor   string    `json:"debtor"`
	Creditor string    `json:"creditor"`
	Amount   string    `json:"amount"`
	Date     time.Time `json:"date"`
}

type SettleDebtResponse struct {
	Transaction Transaction `json:"transaction"`
	Debts       []Debt      `json:"debts"`
}

type RegisterRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

type RegisterResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User User `json:"user"`
}
