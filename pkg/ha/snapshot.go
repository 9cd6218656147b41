package ha

// Snapshot is an ordered view of the platform state: entity records keyed by
// id, enumerated in insertion order. Go maps randomize iteration, and the
// filtering and matching layers promise enumeration-order output, so the
// order is tracked explicitly.
type Snapshot struct {
	ids     []string
	records map[string]EntityRecord
}

// NewSnapshot builds a snapshot from records in the given order.
func NewSnapshot(records ...EntityRecord) Snapshot {
	s := Snapshot{records: make(map[string]EntityRecord, len(records))}
	for _, r := range records {
		s.put(r)
	}
	return s
}

func (s *Snapshot) put(r EntityRecord) {
	if r.EntityID == "" {
		return
	}
	if _, ok := s.records[r.EntityID]; !ok {
		s.ids = append(s.ids, r.EntityID)
	}
	s.records[r.EntityID] = r
}

// Len reports the number of records.
func (s Snapshot) Len() int { return len(s.ids) }

// Get returns the record for id.
func (s Snapshot) Get(id string) (EntityRecord, bool) {
	r, ok := s.records[id]
	return r, ok
}

// IDs returns entity ids in enumeration order. The slice is a copy.
func (s Snapshot) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Each visits records in enumeration order until fn returns false.
func (s Snapshot) Each(fn func(EntityRecord) bool) {
	for _, id := range s.ids {
		if !fn(s.records[id]) {
			return
		}
	}
}

// Records returns all records in enumeration order.
func (s Snapshot) Records() []EntityRecord {
	out := make([]EntityRecord, 0, len(s.ids))
	for _, id := range s.ids {
		out = append(out, s.records[id])
	}
	return out
}
