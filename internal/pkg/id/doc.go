// Package id provides identifier generation for the runs API.
//
// Request IDs are 16 characters drawn from RequestIDAlphabet, a set
// without visually ambiguous characters, so an ID copied from a response
// header can be searched for in the logs without transcription errors.
//
// # Performance
//
// Generation is backed by nanoid and is safe for concurrent use.
package id
