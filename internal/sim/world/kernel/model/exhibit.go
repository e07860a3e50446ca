package model

import "fmt"

// Exhibit is a fixed point of interest in the room. Scale, RotationDeg and Model are
// presentation data for the renderer and never read by the simulation.
type Exhibit struct {
	ID          string  `json:"id"`
	Pos         Vec3    `json:"pos"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Artist      string  `json:"artist"`
	Year        int     `json:"year"` // negative = BCE
	Scale       float64 `json:"scale,omitempty"`
	RotationDeg Vec3    `json:"rotation_deg,omitempty"`
	Model       string  `json:"model,omitempty"`
}

// YearLabel renders the signed year as "800 BCE" or "100 CE".
func (e Exhibit) YearLabel() string {
	if e.Year < 0 {
		return fmt.Sprintf("%d BCE", -e.Year)
	}
	return fmt.Sprintf("%d CE", e.Year)
}

// Registry is the immutable, value-owned exhibit collection. Lookups return copies.
type Registry struct {
	exhibits []Exhibit
	index    map[string]int
}

// NewRegistry copies exhibits in order. Duplicate or empty ids are rejected.
func NewRegistry(exhibits []Exhibit) (*Registry, error) {
	r := &Registry{
		exhibits: make([]Exhibit, len(exhibits)),
		index:    make(map[string]int, len(exhibits)),
	}
	copy(r.exhibits, exhibits)
	for i, e := range r.exhibits {
		if e.ID == "" {
			return nil, fmt.Errorf("exhibit %d: empty id", i)
		}
		if _, dup := r.index[e.ID]; dup {
			return nil, fmt.Errorf("exhibit %q: duplicate id", e.ID)
		}
		r.index[e.ID] = i
	}
	return r, nil
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.exhibits)
}

// All returns a copy of the exhibits in registry order.
func (r *Registry) All() []Exhibit {
	if r == nil {
		return nil
	}
	out := make([]Exhibit, len(r.exhibits))
	copy(out, r.exhibits)
	return out
}

// View returns the backing slice for read-only iteration on the hot path.
// Callers must not modify it.
func (r *Registry) View() []Exhibit {
	if r == nil {
		return nil
	}
	return r.exhibits
}

func (r *Registry) Get(id string) (Exhibit, bool) {
	if r == nil {
		return Exhibit{}, false
	}
	i, ok := r.index[id]
	if !ok {
		return Exhibit{}, false
	}
	return r.exhibits[i], true
}
