package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Person identifies a participant. Two persons with the same name are the
// same person.
type Person struct {
	Name string
}

// NewPerson returns the person called name.
func NewPerson(name string) (Person, error) {
	p := Person{Name: name}
	if err := p.validate(); err != nil {
		return Person{}, err
	}
	return p, nil
}

// MustPerson is like NewPerson but panics on an invalid name.
func MustPerson(name string) Person {
	p, err := NewPerson(name)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Person) validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: person name is empty", ErrInvalidSplit)
	}
	return nil
}

func (p Person) String() string {
	return p.Name
}

// MarshalJSON encodes a person as its name.
func (p Person) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Name)
}

// UnmarshalJSON decodes a person from its name.
func (p *Person) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSplit, err)
	}
	parsed, err := NewPerson(name)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Persons is a list of persons. It decodes from a JSON array of names and
// refuses a bare string, the usual mistake when a single participant is meant.
type Persons []Person

// UnmarshalJSON implements json.Unmarshaler.
func (ps *Persons) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		return ErrInvalidParticipants
	}
	var list []Person
	if err := json.Unmarshal(trimmed, &list); err != nil {
		return err
	}
	*ps = list
	return nil
}

// PersonsFromNames builds persons from plain names.
func PersonsFromNames(names ...string) (Persons, error) {
	out := make(Persons, 0, len(names))
	for _, name := range names {
		p, err := NewPerson(name)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Names returns the persons' names in order.
func (ps Persons) Names() []string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.Name
	}
	return names
}

// SortPersons sorts persons by name, in place.
func SortPersons(persons []Person) {
	slices.SortFunc(persons, comparePersons)
}

func comparePersons(a, b Person) int {
	return strings.Compare(a.Name, b.Name)
}

// personSet is an unordered set of persons. Iteration always goes through
// sorted() so results never depend on map order.
type personSet map[Person]struct{}

func newPersonSet(persons ...Person) personSet {
	s := make(personSet, len(persons))
	s.add(persons...)
	return s
}

func (s personSet) add(persons ...Person) {
	for _, p := range persons {
		s[p] = struct{}{}
	}
}

func (s personSet) has(p Person) bool {
	_, ok := s[p]
	return ok
}

func (s personSet) equal(o personSet) bool {
	if len(s) != len(o) {
		return false
	}
	for p := range s {
		if !o.has(p) {
			return false
		}
	}
	return true
}

func (s personSet) sorted() Persons {
	out := make(Persons, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	SortPersons(out)
	return out
}
