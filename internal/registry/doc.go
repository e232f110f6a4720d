// Package registry holds the build-lifetime symbol table and contract
// registry for a documentation build session.
//
// The registry is passed by reference to every directive-processing call;
// there is no ambient global state. Its lifecycle is create-at-build-start,
// clear-per-document-on-invalidate (Forget), destroy-at-build-end.
//
// During the parallel parse phase each worker owns a private registry;
// after all workers complete, Merge folds each private registry into the
// shared one, restricted to the documents that worker actually processed.
// Duplicate canonical definitions never fail the build: the first entry
// wins and a warning names both documents.
package registry
