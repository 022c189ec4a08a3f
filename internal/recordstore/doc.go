// Package recordstore provides an in-memory record store with secondary indexes.
//
// # Overview
//
// The package centers around [Store], which owns a primary table keyed by
// [Record.ID] and three secondary indexes derived from record fields: by user
// (exact match), by timestamp (range) and by karma (range). Every index is
// updated inside the same [Store.Put] or [Store.Erase] call, so no caller ever
// observes a partially indexed record.
//
// # Handles
//
// Each secondary index entry is keyed by the pair (field value, insertion
// sequence). The pair is stored next to the primary entry and is all that is
// needed to remove exactly that entry later, even when many records share the
// same field value. Records sharing a field value are visited in insertion
// order.
//
// # Concurrency
//
// [Store] is not safe for concurrent use. Callers that need to share a store
// between goroutines wrap it in [Synced], which serializes writers and lets
// readers scan concurrently.
//
// # Visitors
//
// Scans invoke a [Visitor] once per matching record, synchronously. Returning
// false from [Visitor.Visit] stops the scan immediately. A visitor must not
// modify the store it is scanning.
package recordstore
