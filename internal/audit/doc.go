// Package audit provides the audit event model, the bundled sinks and the
// asynchronous dispatcher that feeds them.
//
// The dispatcher owns one goroutine that lives until Close. Emit never
// blocks the caller past its context, and with DropIfFull it never blocks at
// all.
package audit
