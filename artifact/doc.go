// Package artifact defines the artifact envelope, the three-state approval
// machine (draft -> approved | rejected, approved -> draft via explicit
// reopen), and the lifecycle Manager that is the sole writer of artifact
// state.
//
// Payloads are opaque JSON owned by the producing stage strategy; the
// lifecycle manager never inspects them beyond merging approval edits.
package artifact
