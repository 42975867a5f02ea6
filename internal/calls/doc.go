// Package calls detects newly called tickets and newly completed laboratory
// orders by diffing id sets between consecutive polls.
//
// Both detectors start in a bootstrap phase: the first observation only
// records state, because nothing can be "new" relative to an unknown past.
package calls
