// Package repository contains the data access implementations for the
// runs API.
//
//   - postgres: the run store, one pgx pool connection per call.
//   - redis: the optional per-scope listing cache.
//
// Interfaces are declared by the consuming service, not here.
package repository
