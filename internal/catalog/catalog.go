package catalog

import (
	"fmt"

	"github.com/roach88/hindsight/internal/money"
)

// Checkpoint is one scripted market moment within a story. Checkpoints are
// immutable and ordered; the order is fixed at authoring time.
type Checkpoint struct {
	ID                string      `json:"id"`
	Date              string      `json:"date"`
	Label             string      `json:"label"`
	Price             money.Cents `json:"price"`
	Narrative         string      `json:"narrative"`
	RevealAfterAction string      `json:"revealAfterAction"`
}

// Story is one historical scenario: an ordered, non-empty sequence of
// checkpoints played against a starting cash balance.
type Story struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Ticker       string       `json:"ticker"`
	StartingCash money.Cents  `json:"startingCash"`
	Checkpoints  []Checkpoint `json:"checkpoints"`
}

// Summary is the listing view of a story.
type Summary struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Ticker string `json:"ticker"`
}

// Catalog is a read-only set of stories. Listing order is the order stories
// were registered in and is stable across calls.
type Catalog struct {
	stories []Story
	byID    map[string]int
}

// New builds a catalog from the given stories.
// Rejects duplicate story ids and stories with no checkpoints.
func New(stories ...Story) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]int, len(stories))}
	for _, s := range stories {
		if s.ID == "" {
			return nil, fmt.Errorf("story with empty id")
		}
		if len(s.Checkpoints) == 0 {
			return nil, fmt.Errorf("story %s: no checkpoints", s.ID)
		}
		if _, dup := c.byID[s.ID]; dup {
			return nil, fmt.Errorf("duplicate story id: %s", s.ID)
		}
		c.byID[s.ID] = len(c.stories)
		c.stories = append(c.stories, s)
	}
	return c, nil
}

// List returns summaries of all known stories in registration order.
func (c *Catalog) List() []Summary {
	out := make([]Summary, len(c.stories))
	for i, s := range c.stories {
		out[i] = Summary{ID: s.ID, Title: s.Title, Ticker: s.Ticker}
	}
	return out
}

// Find looks up a story by id. The second return value is false on a miss.
func (c *Catalog) Find(id string) (Story, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Story{}, false
	}
	return c.stories[i], true
}

// IDs returns all story ids in registration order.
// Used for "story not found" error messages.
func (c *Catalog) IDs() []string {
	out := make([]string, len(c.stories))
	for i, s := range c.stories {
		out[i] = s.ID
	}
	return out
}

// Len returns the number of stories in the catalog.
func (c *Catalog) Len() int {
	return len(c.stories)
}
