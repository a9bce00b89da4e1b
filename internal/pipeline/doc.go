// Package pipeline contains the sequencing driver. It runs the configured
// steps strictly one after another in declaration order: each step blocks
// until its handler returns, a failure aborts everything downstream, and
// there are no retries and no parallelism. The only states a step moves
// through are Pending -> Running -> (Done | Failed), with the steps behind
// a failure marked Skipped.
package pipeline
