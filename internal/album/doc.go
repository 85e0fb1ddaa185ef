// Package album maps a catalog release snapshot onto the model used for
// tagging: album-level facts, a totally ordered and numbered track list,
// and per-disc track totals.
//
// Mapping is all-or-nothing. A release whose positions cannot be turned
// into unambiguous disc/track numbers yields an error and no model, since
// file naming and tag writing depend on complete numbering.
package album
