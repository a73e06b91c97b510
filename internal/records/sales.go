package records

import (
	"time"

	"github.com/google/uuid"
)

// Sale is one sale of farm produce.
type Sale struct {
	ID         uuid.UUID    `json:"id"`
	Category   SaleCategory `json:"category"`
	AnimalType AnimalType   `json:"animal_type"`
	Quantity   float64      `json:"quantity"`
	Amount     float64      `json:"amount"`
	Customer   string       `json:"customer"`
	Date       time.Time    `json:"date"`
}

func (s Sale) validate() error {
	switch {
	case !s.Category.Valid():
		return ValidationError{Field: "category", Reason: "unknown category " + string(s.Category)}
	case !s.AnimalType.Valid():
		return ValidationError{Field: "animal_type", Reason: "unknown animal type " + string(s.AnimalType)}
	case s.Quantity <= 0:
		return ValidationError{Field: "quantity", Reason: "must be positive"}
	case s.Amount <= 0:
		return ValidationError{Field: "amount", Reason: "must be positive"}
	}
	return nil
}

// SaleStore keeps sales in memory.
type SaleStore struct {
	items *collection[Sale]
	now   func() time.Time
}

func NewSaleStore() *SaleStore {
	return &SaleStore{
		items: newCollection(func(s Sale) uuid.UUID { return s.ID }),
		now:   time.Now,
	}
}

// Add validates sale and appends it. A missing ID or date is filled in.
func (s *SaleStore) Add(sale Sale) (Sale, error) {
	if err := sale.validate(); err != nil {
		return Sale{}, err
	}
	if sale.ID == uuid.Nil {
		sale.ID = uuid.New()
	}
	if sale.Date.IsZero() {
		sale.Date = s.now()
	}
	s.items.add(sale)
	return sale, nil
}

// Update replaces the sale with sale.ID. The original date is kept.
func (s *SaleStore) Update(sale Sale) (Sale, error) {
	if err := sale.validate(); err != nil {
		return Sale{}, err
	}
	return s.items.update(sale.ID, func(old Sale) Sale {
		sale.Date = old.Date
		return sale
	})
}

func (s *SaleStore) Delete(id uuid.UUID) error {
	return s.items.remove(id)
}

func (s *SaleStore) Get(id uuid.UUID) (Sale, error) {
	return s.items.get(id)
}

// List returns the sales in insertion order.
func (s *SaleStore) List() []Sale {
	return s.items.list()
}

// Total sums the amount of every sale.
func (s *SaleStore) Total() float64 {
	total := 0.0
	for _, sale := range s.items.list() {
		total += sale.Amount
	}
	return total
}

// Subscribe delivers a Change after every mutation until cancel is called.
func (s *SaleStore) Subscribe() (<-chan Change, func()) {
	return s.items.subscribe()
}
