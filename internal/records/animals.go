package records

import (
	"strings"

	"github.com/google/uuid"
)

// Animal is a group of animals of one type, breed, sex and status.
type Animal struct {
	ID       uuid.UUID    `json:"id"`
	Type     AnimalType   `json:"type"`
	Quantity int          `json:"quantity"`
	Breed    string       `json:"breed"`
	Sex      AnimalSex    `json:"sex"`
	Status   AnimalStatus `json:"status"`
}

func (a Animal) validate() error {
	switch {
	case !a.Type.Valid():
		return ValidationError{Field: "type", Reason: "unknown animal type " + string(a.Type)}
	case a.Quantity <= 0:
		return ValidationError{Field: "quantity", Reason: "must be positive"}
	case strings.TrimSpace(a.Breed) == "":
		return ValidationError{Field: "breed", Reason: "must not be empty"}
	case !a.Sex.Valid():
		return ValidationError{Field: "sex", Reason: "unknown sex " + string(a.Sex)}
	case !a.Status.Valid():
		return ValidationError{Field: "status", Reason: "unknown status " + string(a.Status)}
	}
	return nil
}

// AnimalStore keeps the herd records in memory.
type AnimalStore struct {
	items *collection[Animal]
}

func NewAnimalStore() *AnimalStore {
	return &AnimalStore{items: newCollection(func(a Animal) uuid.UUID { return a.ID })}
}

// Add validates a and appends it, assigning an ID when it has none.
func (s *AnimalStore) Add(a Animal) (Animal, error) {
	if err := a.validate(); err != nil {
		return Animal{}, err
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	s.items.add(a)
	return a, nil
}

// Update replaces the record with a.ID in place.
func (s *AnimalStore) Update(a Animal) (Animal, error) {
	if err := a.validate(); err != nil {
		return Animal{}, err
	}
	return s.items.update(a.ID, func(Animal) Animal { return a })
}

func (s *AnimalStore) Delete(id uuid.UUID) error {
	return s.items.remove(id)
}

func (s *AnimalStore) Get(id uuid.UUID) (Animal, error) {
	return s.items.get(id)
}

// List returns the records in insertion order.
func (s *AnimalStore) List() []Animal {
	return s.items.list()
}

// TotalHeads sums the quantity of every record.
func (s *AnimalStore) TotalHeads() int {
	total := 0
	for _, a := range s.items.list() {
		total += a.Quantity
	}
	return total
}

// Subscribe delivers a Change after every mutation until cancel is called.
func (s *AnimalStore) Subscribe() (<-chan Change, func()) {
	return s.items.subscribe()
}
