package tradebook

import "time"

// UnknownStrategyLabel replaces the title of a strategy that was deleted
// while positions still reference it. Dangling references are a display
// state, never an error.
const UnknownStrategyLabel = "Unknown"

// Strategy is a named trading approach that positions may reference.
type Strategy struct {
	ID        string    `json:"-"` // assigned by the store on creation
	Title     string    `json:"title"`
	Details   string    `json:"details,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// StrategyIndex resolves strategy ids to titles.
type StrategyIndex map[string]Strategy

// NewStrategyIndex builds an index from a strategy list.
func NewStrategyIndex(strategies []Strategy) StrategyIndex {
	idx := make(StrategyIndex, len(strategies))
	for _, s := range strategies {
		idx[s.ID] = s
	}
	return idx
}

// Title returns the title for the given id, or UnknownStrategyLabel when the
// strategy no longer exists.
func (idx StrategyIndex) Title(id string) string {
	if s, ok := idx[id]; ok {
		return s.Title
	}
	return UnknownStrategyLabel
}
