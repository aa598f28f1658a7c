package session

import (
	"github.com/ganot/interview-etl/internal/domain/record"
	"github.com/ganot/interview-etl/internal/domain/schema"
)

// RecordStore is the part of the record store an edit needs.
type RecordStore interface {
	Schema() *schema.Schema
	Get(id string) (record.Record, error)
	UpdateRecord(id string, patch record.Patch) (record.Record, error)
}
