// Package models defines the core domain models for the ledger.
//
// # Stored Models
//
// The following models are persisted by a storage.Store:
//   - Group: a named set of participants sharing expenses
//   - Participant: a member of exactly one group
//   - Expense: a payment made by one participant, divided by a Split
//   - Settlement: a real payment between two participants, entered by a user
//
// # Derived Models
//
// The following models are recomputed on demand and never stored:
//   - Balance: a participant's paid/owed/net position in one currency
//   - Transfer: a recommended payment produced by the settlement planner
//
// # Design Principles
//
// 1. **Stable identity**: splits reference participants by ParticipantID, never by display name
// 2. **Soft removal**: removing a participant keeps every historical reference valid
// 3. **Avoid circular references**: use ID strings instead of pointers for relationships
// 4. **One tolerance**: Epsilon and NoiseFloor are the only float tolerances in the module
package models
