package construct

import (
	"time"

	"github.com/ganot/interview-etl/internal/domain/schema"
)

// Construct is a stored extraction template: the record schema that a job's
// results and a workspace's table conform to.
type Construct struct {
	ID        string         `json:"id"`
	Schema    *schema.Schema `json:"schema"`
	CreatedAt time.Time      `json:"created_at"`
}

// Name returns the schema name, which is unique across constructs.
func (c *Construct) Name() string { return c.Schema.Name }

// Summary is a lightweight representation for listing.
type Summary struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IDPrefix    string `json:"id_prefix"`
	Fields      int    `json:"fields"`
	Builtin     bool   `json:"builtin"`
}
