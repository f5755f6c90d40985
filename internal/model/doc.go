// Package model defines shared data types used across the deal monitor.
//
// StateRecord mirrors the state table applied by the store backends on open;
// the remaining types are wire and in-memory shapes.
//
// Conventions:
//   - Money: integer cents
//   - Timestamps: int64 microseconds since Unix epoch
//   - IDs: string for listings (derived from card content), uuid.UUID for cycles
package model
