// Package diag defines the diagnostic model shared by both analyzers and
// the reporting layers.
//
// # Purpose
//
//   - Provide deterministic, serialisable data structures that capture
//     findings produced by the use-statement and line-width analyzers.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to concrete storage or formatting layers.
//   - Model fix suggestions as structured edits that the CLI can optionally
//     apply.
//
// # Scope
//
// Package diag does not perform any formatting, IO, CLI integration, or
// interactive behaviour. Rendering responsibilities live in
// internal/diagfmt; orchestration and application of fixes lives in
// internal/fix and the driver layer.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with stable string
//     form and a fixed per-category rank used by Bag.Sort.
//   - Message – human oriented text; keep it short and actionable.
//   - Primary span – the canonical source.Span pointing to the issue.
//   - Notes – optional secondary spans/messages for additional context.
//   - Fixes – optional Fix records describing how to address the problem.
//
// # Emitting diagnostics
//
// Analyzers should use a diag.Reporter to decouple emission from storage.
// diag.BagReporter aggregates diagnostics into a Bag, which supports
// sorting and merging; DedupReporter filters duplicates at the source
// before they ever reach a Bag.
//
// Keep the data model deterministic: diagnostics are serialised for the
// result cache and compared verbatim in golden tests.
package diag
