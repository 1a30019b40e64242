// Package ledger is the debt-accounting engine.
//
// A Ledger owns Transactions (outlays and refunds). Each Transaction bundles
// Items (what was consumed, and by whom) and Payments (who paid). From those
// the engine derives per-person totals, net balances and a short list of
// settlement payments.
//
// # Money
//
// Amounts are int64 counts of minor currency units (cents). The engine never
// uses floating point.
//
// # Ordering
//
// Whenever an amount does not divide evenly, or two persons tie during
// settlement, persons are taken in ascending name order (byte-wise string
// comparison). Identical input always produces identical output.
//
// # Concurrency
//
// Nothing in this package is safe for concurrent mutation. Callers serialise
// writes to a Ledger and its Transactions.
package ledger
