package records

import (
	"fmt"
	"slices"
)

// AnimalType is the kind of livestock.
type AnimalType string

const (
	Chickens AnimalType = "Chickens"
	Pigs     AnimalType = "Pigs"
	Rams     AnimalType = "Rams"
	Cows     AnimalType = "Cows"
	Rabbits  AnimalType = "Rabbits"
	Sheep    AnimalType = "Sheep"
	Other    AnimalType = "Other"
)

// AnimalTypes lists every animal type in display order.
var AnimalTypes = []AnimalType{Chickens, Pigs, Rams, Cows, Rabbits, Sheep, Other}

func (t AnimalType) Valid() bool { return slices.Contains(AnimalTypes, t) }

// AnimalSex is the sex of an animal group.
type AnimalSex string

const (
	Male   AnimalSex = "Male"
	Female AnimalSex = "Female"
)

func (s AnimalSex) Valid() bool { return s == Male || s == Female }

// AnimalStatus is what the animals are kept for.
type AnimalStatus string

const (
	InBreeding AnimalStatus = "In breeding"
	OnFeed     AnimalStatus = "On feed"
	ForSale    AnimalStatus = "For sale"
)

func (s AnimalStatus) Valid() bool {
	return s == InBreeding || s == OnFeed || s == ForSale
}

// SaleCategory is the product sold.
type SaleCategory string

const (
	Eggs       SaleCategory = "Eggs"
	Pork       SaleCategory = "Pork"
	Lamb       SaleCategory = "Lamb"
	Wool       SaleCategory = "Wool"
	Milk       SaleCategory = "Milk"
	Meat       SaleCategory = "Meat"
	OtherGoods SaleCategory = "Other"
)

// SaleCategories lists every sale category in display order.
var SaleCategories = []SaleCategory{Eggs, Pork, Lamb, Wool, Milk, Meat, OtherGoods}

func (c SaleCategory) Valid() bool { return slices.Contains(SaleCategories, c) }

// ValidationError reports a rejected record field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
