package sql

import (
	"encoding/json"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockingClause requests a row lock for the count-then-insert inside
// CreateIntentIfBelowCap's transaction. SQLite (used in adapter tests)
// has no row-level locking and ignores it; Postgres honors it.
func lockingClause() clause.Locking {
	return clause.Locking{Strength: "UPDATE"}
}

// applyPage applies the pagination the design notes call for (§9
// "Metadata search"); perPage <= 0 disables pagination entirely.
func applyPage(q *gorm.DB, page, perPage int) *gorm.DB {
	if perPage <= 0 {
		return q
	}
	if page < 1 {
		page = 1
	}
	return q.Offset((page - 1) * perPage).Limit(perPage)
}

// metadataLikePattern builds a LIKE pattern matching the JSON-encoded
// `"key":"value"` pair inside a Metadata text column. It is a coarse
// pre-filter only — callers re-check the decoded map exactly, since a
// LIKE match can't rule out the pair spanning key/value boundaries of
// an unrelated entry.
func metadataLikePattern(key, value string) string {
	k, _ := json.Marshal(key)
	v, _ := json.Marshal(value)
	return "%" + string(k) + ":" + string(v) + "%"
}
