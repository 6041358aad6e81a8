// Package resource manages the resources of a bulk import: a hard memory
// budget, import worker slots, and an optional allocation-rate throttle.
//
// The Controller is shared between all builders of one import. Builders
// report materialized pages through TrackAllocation; callers claim budget
// through Reserve, which fails fast when the limit is exhausted, and return
// it through Release. A nil *Controller disables all limits, so components
// accept one unconditionally.
//
// The estimation helpers project worst-case page memory before any
// allocation happens, for sizing limits or reserving ahead of an import.
package resource
