// Package service contains the business logic layer for the runs API.
//
// Services sit between the HTTP handlers and the repositories. They
// depend on repository interfaces defined in this package and resolve
// untrusted input into domain values before storage is touched.
//
// # Thread Safety
//
// All services are safe for concurrent use from multiple goroutines.
package service
