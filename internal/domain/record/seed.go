package record

import (
	"context"
	"fmt"

	"github.com/ganot/interview-etl/internal/domain/schema"
)

// Seed supplies the initial contents of a store.
type Seed interface {
	Records(s *schema.Schema) ([]Record, error)
}

// SeedFunc adapts a function to Seed.
type SeedFunc func(s *schema.Schema) ([]Record, error)

// Records implements Seed.
func (f SeedFunc) Records(s *schema.Schema) ([]Record, error) { return f(s) }

// EmptySeed starts the store without records.
var EmptySeed Seed = SeedFunc(func(*schema.Schema) ([]Record, error) { return nil, nil })

// StaticSeed starts the store with a fixed set of records.
func StaticSeed(records ...Record) Seed {
	return SeedFunc(func(*schema.Schema) ([]Record, error) {
		out := make([]Record, len(records))
		for i, rec := range records {
			out[i] = rec.Clone()
		}
		return out, nil
	})
}

// Source delivers an ordered batch of raw records, such as a completed extraction job.
type Source interface {
	Results(ctx context.Context, jobID string) ([]Record, error)
}

// SourceSeed starts the store with the results of a bulk record source.
func SourceSeed(ctx context.Context, src Source, jobID string) Seed {
	return SeedFunc(func(*schema.Schema) ([]Record, error) {
		records, err := src.Results(ctx, jobID)
		if err != nil {
			return nil, fmt.Errorf("loading job %s: %w", jobID, err)
		}
		return records, nil
	})
}

// SampleSeed starts the store with the demonstration rows for a built-in schema.
// Schemas without sample rows start empty.
func SampleSeed() Seed {
	return SeedFunc(func(s *schema.Schema) ([]Record, error) {
		return samples[s.Name], nil
	})
}

var samples = map[string][]Record{
	"user_story": {
		{ID: "US-1", Fields: map[string]schema.Value{
			"story":       schema.String("As a content manager, I need to route assets for legal review so that published material is compliant"),
			"team":        schema.String("Marketing"),
			"category":    schema.String("Workflow"),
			"capability":  schema.String("Route assets for legal review"),
			"priority":    schema.String("High"),
			"source":      schema.String("interview-01.docx"),
			"snippet":     schema.String("Every asset has to go through legal, and right now that's an email chain..."),
			"match_score": schema.Number(0.92),
			"tags":        schema.Tags("workflow", "approval", "content manager"),
		}},
		{ID: "US-2", Fields: map[string]schema.Value{
			"story":       schema.String("As a designer, I need to tag assets with campaign metadata so that I can find them later"),
			"team":        schema.String("Creative"),
			"category":    schema.String("DAM"),
			"capability":  schema.String("Tag assets with campaign metadata"),
			"priority":    schema.String("Medium"),
			"source":      schema.String("interview-02.docx"),
			"snippet":     schema.String("We lose track of which files belong to which campaign."),
			"match_score": schema.Number(0.81),
			"tags":        schema.Tags("dam", "metadata", "designer"),
		}},
		{ID: "US-3", Fields: map[string]schema.Value{
			"story":       schema.String("As an approver, I need notifications when a review is waiting so that launches are not delayed"),
			"team":        schema.String("Product"),
			"category":    schema.String("Workflow"),
			"capability":  schema.String("Notify approvers of pending reviews"),
			"priority":    schema.String("Low"),
			"source":      schema.String("interview-01.docx"),
			"snippet":     schema.String("I only find out something needs my sign-off when someone pings me."),
			"match_score": schema.Number(0.67),
			"tags":        schema.Tags("workflow", "notification", "approver"),
		}},
	},
	"requirement": {
		{ID: "REQ-1", Fields: map[string]schema.Value{
			"requirement":     schema.String("The system shall route submitted assets to the legal review queue"),
			"priority_level":  schema.String("High"),
			"details":         schema.String("Routing happens on submission; reviewers see the asset, requester and due date."),
			"source_story_id": schema.String("US-1"),
		}},
		{ID: "REQ-2", Fields: map[string]schema.Value{
			"requirement":     schema.String("The system shall notify approvers when a review is assigned"),
			"priority_level":  schema.String("Medium"),
			"details":         schema.String("Notifications are sent by email and in-app."),
			"source_story_id": schema.String("US-3"),
		}},
	},
}
