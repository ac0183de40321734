// Package models defines the core domain models for Poinku.
//
// # Ledger Models
//
//   - Member: a customer with a cached point balance
//   - Transaction: an immutable journal entry (earning or redeem)
//
// The journal is the system of record. Member.Balance is a cache that the
// storage layer keeps equal to the sum of the member's journal entries by
// mutating both in the same database transaction.
//
// # Voucher Models
//
//   - Reward: a catalog item with a point cost
//   - Voucher: a single-use claim ticket (active → used | expired)
//   - VoucherDetails: the joined projection shown at the till
//
// # Directory Models
//
//   - Store: a branch, stamped on entries and redemptions for audit
//   - Staff: cashier and admin accounts
//
// # Design Principles
//
//  1. **Members are global**: store identity is recorded, never enforced
//  2. **Append-only journal**: entries are never updated or deleted
//  3. **One-way voucher states**: used and expired are terminal
//  4. **IDs, not pointers**: relationships are UUID strings
package models
