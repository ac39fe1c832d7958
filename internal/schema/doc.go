// Package schema defines the wire records exchanged between the ragdex
// API, its callers, and the internal retrieval stages, together with
// the validation that turns raw JSON into constraint-satisfying
// records.
//
// Every record has a Parse function with a uniform contract: it accepts
// raw JSON bytes and returns either a fully populated record (with
// defaults applied) or a *ValidationError listing every violated field,
// so a caller can fix all problems in one round trip. Parsing never
// coerces across incompatible types and has no side effects.
package schema
