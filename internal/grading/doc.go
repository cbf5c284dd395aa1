// Package grading holds the pure computation steps of term evaluation: the
// ordered weight and grading-scale resolution chains, the grade mapper and the
// score aggregator. Nothing here performs I/O; callers load immutable
// snapshots and pass them in.
package grading
