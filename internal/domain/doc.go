// Package domain contains the core entities of the runs API.
//
// A Run records that a run against one RunTarget happened within a
// caller-chosen scope. Runs are created once and never modified.
//
// RunTarget is a closed set; use ParseRunTarget to resolve untrusted
// input against it.
package domain
