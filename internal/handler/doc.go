// Package handler contains HTTP request handlers for the runs API.
//
// Handlers parse and validate input, call a service and shape the
// success response. Failures are returned unchanged as errors; the
// application error handler turns them into the error envelope.
//
// # Route Organization
//
//   - {prefix}/runs/:scope - run recording and listing
//   - /health, /livez, /readyz, /version - operational endpoints
//
// # Thread Safety
//
// All handlers are safe for concurrent use.
package handler
