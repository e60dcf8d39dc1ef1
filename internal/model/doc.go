// Package model holds the value types shared by the resolver, pipeline and
// orchestrator: normalized media items, wanted-track descriptions, search
// candidates, ranked sources, stage events and per-item live state.
//
// Types here carry no behaviour beyond small derivations and the status
// transition rules, so every other package can depend on model without
// pulling in I/O.
package model
