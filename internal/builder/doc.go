// Package builder orchestrates the documentation build pipeline.
//
// A build discovers documentation sources under a root directory, skips
// documents whose content hash is unchanged, parses the rest in a worker
// pool, merges the per-worker symbol registries into a session registry,
// resolves every collected cross-reference, and persists the results in
// batched transactions.
//
// Parallelism model: each worker batch owns a private registry so parsing
// never contends on shared state. The merge phase is single threaded and
// deterministic, folding each private registry in restricted to the
// documents that worker parsed.
//
// Concurrent builds are rejected with ErrBuildInProgress via a
// non-blocking atomic lock.
package builder
