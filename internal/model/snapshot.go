package model

import "time"

// Source selects which endpoint body of a Snapshot a value is read from.
type Source int

const (
	SourceStatus Source = iota
	SourcePower
)

func (s Source) String() string {
	if s == SourcePower {
		return "power"
	}
	return "status"
}

// Snapshot holds the merged result of one successful poll cycle: the decoded
// /status and /power bodies exactly as the charger returned them.
// A Snapshot is never modified after construction; callers must not mutate
// the maps.
type Snapshot struct {
	Status    map[string]any
	Power     map[string]any
	FetchedAt time.Time
}

// Complete reports whether both endpoint bodies are present.
func (s *Snapshot) Complete() bool {
	return s != nil && len(s.Status) > 0 && len(s.Power) > 0
}

// Value walks path through the nested maps of the selected source.
// Returns false if any segment is missing or not an object.
func (s *Snapshot) Value(src Source, path ...string) (any, bool) {
	if s == nil || len(path) == 0 {
		return nil, false
	}
	cur := s.Status
	if src == SourcePower {
		cur = s.Power
	}
	for i, key := range path {
		v, ok := cur[key]
		if !ok {
			return nil, false
		}
		if i == len(path)-1 {
			return v, true
		}
		next, ok := v.(map[string]any)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return nil, false
}

// Number returns the value at path as a float64. JSON numbers decode to
// float64, so anything else is reported as missing.
func (s *Snapshot) Number(src Source, path ...string) (float64, bool) {
	v, ok := s.Value(src, path...)
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

// Bool returns the value at path as a bool.
func (s *Snapshot) Bool(src Source, path ...string) (bool, bool) {
	v, ok := s.Value(src, path...)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// String returns the value at path as a string.
func (s *Snapshot) String(src Source, path ...string) (string, bool) {
	v, ok := s.Value(src, path...)
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	return str, ok
}
