// Package walker enumerates a Maven-layout repository's directory tree and
// picks the latest version of every artifact it finds.
//
// Group ids map to nested directories (org/apache/commons), so the walker
// cannot tell a group directory from an artifact directory by name. It looks
// one level ahead instead: a directory whose first child itself has children
// is still part of the group path; otherwise it is an artifact directory and
// its children are versions.
//
// Recursion is bounded by [Options.MaxDepth]; deeper branches are abandoned
// and logged, never reported as errors.
package walker
