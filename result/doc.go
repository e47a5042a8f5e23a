// Package result holds the per-expectation and per-suite validation results
// and the aggregate statistics computed over them.
package result
