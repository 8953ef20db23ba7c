// Package availability holds the pure room-availability rules: inclusive
// date-range overlap, day-block intersection, attribute filtering and the
// two-stage available-room filter. Every function works on snapshots passed
// in by the caller and never touches the store.
package availability
