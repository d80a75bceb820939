// Package errs provides the error types shared across the order workflow service.
//
// Each kind follows the same shape:
//   - a sentinel (ErrObjectNotFound, ErrValueIsInvalid, ...) for errors.Is checks
//   - a struct carrying the offending parameter and an optional cause
//   - New... and New...WithCause constructors
//   - Unwrap returning the sentinel
//
// Workflow-specific kinds (illegal, unauthorized, redundant and conflicting
// transitions) live next to the order aggregate; this package only holds the
// generic lookup and validation failures.
package errs
