// Package registry provides the specialist directory: an injected,
// process-wide record of known specialists and their declared input
// contracts. The core never reaches for ambient global state; a Directory is
// constructed once per process and passed by reference to whoever needs it.
package registry

import (
	"fmt"
	"sort"
	"sync"
)

// FieldKind is the declared type of one specialist input field.
type FieldKind string

const (
	FieldString FieldKind = "string"
	FieldInt    FieldKind = "int"
	FieldFloat  FieldKind = "float"
	FieldBool   FieldKind = "bool"
	FieldList   FieldKind = "list"
	FieldMap    FieldKind = "map"
	// FieldAny disables type checking for the field.
	FieldAny FieldKind = "any"
)

// InputContract declares the expected input fields of a specialist.
// Fields absent from the contract are passed through unchecked.
type InputContract map[string]FieldKind

// Specialist describes one registered worker.
type Specialist struct {
	Name        string
	Description string
	Skills      []string
	Inputs      InputContract
}

// Directory is a concurrency-safe registry of specialists.
type Directory struct {
	mu          sync.RWMutex
	specialists map[string]Specialist
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{specialists: make(map[string]Specialist)}
}

// Register adds or replaces a specialist entry.
func (d *Directory) Register(s Specialist) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.specialists[s.Name] = s
}

// Lookup returns the specialist entry for a name.
func (d *Directory) Lookup(name string) (Specialist, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s, ok := d.specialists[name]
	return s, ok
}

// Names returns all registered specialist names (unordered).
func (d *Directory) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.specialists))
	for name := range d.specialists {
		names = append(names, name)
	}
	return names
}

// CheckInputs validates a step's input payload against the specialist's
// declared contract. Returns one message per mismatched field; an empty
// result means the payload conforms (or the specialist is unregistered).
func (d *Directory) CheckInputs(name string, inputs map[string]any) []string {
	s, ok := d.Lookup(name)
	if !ok || len(s.Inputs) == 0 {
		return nil
	}

	fields := make([]string, 0, len(s.Inputs))
	for field := range s.Inputs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var problems []string
	for _, field := range fields {
		kind := s.Inputs[field]
		value, present := inputs[field]
		if !present {
			problems = append(problems, fmt.Sprintf("specialist %q requires input %q", name, field))
			continue
		}
		if !kindMatches(kind, value) {
			problems = append(problems, fmt.Sprintf("specialist %q input %q: expected %s, got %T", name, field, kind, value))
		}
	}
	return problems
}

func kindMatches(kind FieldKind, value any) bool {
	switch kind {
	case FieldAny:
		return true
	case FieldString:
		_, ok := value.(string)
		return ok
	case FieldBool:
		_, ok := value.(bool)
		return ok
	case FieldInt:
		switch v := value.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return true
		case float64:
			// JSON decoding yields float64 for every number.
			return v == float64(int64(v))
		default:
			return false
		}
	case FieldFloat:
		switch value.(type) {
		case float32, float64, int, int8, int16, int32, int64:
			return true
		default:
			return false
		}
	case FieldList:
		switch value.(type) {
		case []any, []string:
			return true
		default:
			return false
		}
	case FieldMap:
		_, ok := value.(map[string]any)
		return ok
	default:
		return false
	}
}
