// Package models defines the records persisted by sharedpot.
//
// These are plain storage shapes. The accounting itself happens in package
// ledger: the service layer loads records, converts them to ledger values and
// asks the engine for totals, balances and debts on every request.
//
// # Records
//
//   - User: an account that owns ledgers
//   - Ledger: a named group of transactions (a trip, a flat share)
//   - Transaction: an outlay or a refund, with its Items and Payments
//
// Participants are stored by name. A name is the person's identity within a
// ledger; there is no separate person table.
//
// Amounts are int64 cents. Dates are Unix seconds.
package models
