// Package scheduler assigns jobs to a fixed number of one-job slots so that
// the captured revenue is maximal under each job's deadline.
//
// Jobs are considered from the most to the least valuable and each one is
// placed in the latest free slot that still meets its deadline, which keeps
// early slots available for tighter deadlines seen later. The package is
// pure: it performs no I/O, never mutates its input and keeps no state
// between calls.
package scheduler
