// Package dense provides fixed-size paged arrays for the remapped id
// space, where every index from 0 to size-1 holds a value.
//
// Unlike the sparse family, pages are materialized up front and there
// is no default value or presence tracking: the array is a flat column
// that happens to be paged so it can grow past the limits of a single
// allocation and share page geometry with the sparse builders. The
// import pipeline builds its reverse id lookup this way, adopting the
// pages of a drained sparse array without copying.
package dense
