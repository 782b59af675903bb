// Package replay is the runtime library for generated etch test suites.
//
// Generated files depend only on this package plus a host factory the
// target package provides. The package supplies:
//
//   - Host, the capability boundary to the live editor/document
//   - Cell, a settle-once state cell (Pending / Resolved / Failed) used
//     as the cross-test ordering primitive
//   - Suite, which runs one generated test per transition, cascades
//     skips down the dependency chain, and joins staggered batch groups
//   - Recorder, a small Host wrapper for the macro-repeat feature
//
// Tests in a suite run sequentially; within one test, only the members
// of a batch group are ever outstanding concurrently, and the group is
// joined before the next group starts.
package replay
