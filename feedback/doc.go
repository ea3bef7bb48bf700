// Package feedback turns a frame's joint angles into exercise-form
// feedback messages.
//
// Each exercise kind has an ordered table of independent threshold rules.
// Every rule is evaluated on every frame (no short-circuit) and every
// matching rule appends its message, so output order is declaration order.
// The result is never empty: a kind whose rules all pass yields a single
// affirmation, an empty angle map yields a framing prompt, and an unknown
// kind yields a "not supported" message rather than an error.
package feedback
