// Package explore provides the orchestration engine for simulation-in-the-loop
// optimization: an ask/evaluate/tell loop that pulls candidate trials from an
// optimization generator, dispatches them to a bounded pool of evaluation
// workers, records results in a durable history store and feeds completed
// results back to the generator until an evaluation budget is exhausted.
//
// # Reading Guide
//
// Start with these three files to understand the engine:
//   - trial.go: Trial lifecycle (proposed → dispatched → running → terminal) and state machine
//   - scheduler.go: the bounded worker-slot pool (submit, poll, drain)
//   - controller.go: the exploration loop, budget enforcement and resume replay
//
// # Architecture
//
// The explore package defines interfaces and bridge types; implementations live
// in sub-packages:
//   - explore/history/: SQLite-backed append-only history store and diagnostics views
//   - explore/sampling/: built-in sampling generators (random, grid, line)
//   - explore/evaluate/: evaluation backends (function evaluator, multitask dispatch)
//
// # Key Interfaces
//
// The extension points are small interfaces:
//   - Generator: propose new trials (Ask) and observe finished ones (Tell)
//   - TaskGenerator: a Generator that tags trials for multitask routing
//   - Evaluator: run one trial asynchronously (Submit / IsDone / Result)
//
// Optimization algorithms and simulation launch mechanics live entirely behind
// these interfaces; the engine only guarantees correct bookkeeping around them.
package explore
