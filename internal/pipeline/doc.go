// Package pipeline provides a framework for processing monitored entities
// through the steps of a run.
//
// Each entity passes through three stages: extraction of its page text,
// recovery of its baseline from the report archive, and comparison of the
// two. Each stage is implemented as a Step that receives the entity's
// accumulated state and can fail it.
//
// Design decision: We use a pipeline pattern instead of direct function calls
// because:
// 1. It allows easy addition/removal of steps without modifying core logic
// 2. It provides consistent error handling and logging across steps
// 3. It supports cancellation via context for long-running runs
//
// The pipeline supports batch processing of all configured entities with
// concurrency control using errgroup. A failing entity never aborts the
// batch; its failure is recorded and the remaining entities proceed.
package pipeline
