package models

import "github.com/google/uuid"

// ensureID assigns a random id to rows created without one so that inserts
// work on both Postgres and SQLite.
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// All lists every model owned by the service, in dependency order.
func All() []any {
	return []any{
		&Quote{},
		&QuoteLineItem{},
		&WorkOrder{},
		&ProductItem{},
		&ProductItemTransaction{},
		&ProductConsumed{},
		&OutboxEvent{},
	}
}
