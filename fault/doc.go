// Package fault defines the error taxonomy of the heritability pipeline.
//
// Two kinds of failure exist:
//
//   - Skip: a single input record is malformed. The stage records a RecordError
//     (which unwraps to ErrMalformedInput) and moves on.
//   - Abort: the stage cannot continue (ErrNoData, ErrColumnNotFound,
//     ErrNoOverlap, ErrSingularDesign, ErrDecomposition, ErrIO). The error is
//     returned to the caller and the pipeline halts; nothing is retried.
package fault
