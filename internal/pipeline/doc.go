// Package pipeline coordinates the multi-stage zapret pipelines: install,
// strategy discovery, easy install and strategy application.
//
// A pipeline is a Task running on its own goroutine. It sends Messages over a
// buffered channel that a Controller drains without blocking on a fixed tick:
//
//	ctrl := pipeline.Start(ctx, pipeline.KindDiscovery, env.Supervisor, task, observer)
//	result := ctrl.Drive(sigCtx, cfg.PollInterval)
//
// Cancellation is cooperative. Run.Cancel cancels the run's context, which
// workers check before every blocking step and between output lines, and
// kills the tracked child process as a backstop. A cancelled run never sends
// Finished; the controller reports OutcomeCancelled once the worker's channel
// closes.
//
// Failures are terminal for the run and are never retried. Classify maps an
// error to its ErrorKind.
package pipeline
