// Package mem provides memory allocation utilities.
//
// # Aligned Allocation
//
// Provides 64-byte aligned page allocation so that pages start on a cache
// line boundary regardless of element type.
package mem
