package domain

import "sort"

// Itinerary is a search candidate of one or two legs. It is never persisted.
type Itinerary struct {
	LegOne Flight  `json:"leg_one"`
	LegTwo *Flight `json:"leg_two,omitempty"`
}

func Direct(f Flight) Itinerary {
	return Itinerary{LegOne: f}
}

func Connecting(first, second Flight) Itinerary {
	return Itinerary{LegOne: first, LegTwo: &second}
}

func (it Itinerary) TotalDuration() int {
	if it.LegTwo == nil {
		return it.LegOne.Duration
	}
	return it.LegOne.Duration + it.LegTwo.Duration
}

func (it Itinerary) HopCount() int {
	if it.LegTwo == nil {
		return 1
	}
	return 2
}

// Price is the sum of the leg prices.
func (it Itinerary) Price() int64 {
	if it.LegTwo == nil {
		return it.LegOne.Price
	}
	return it.LegOne.Price + it.LegTwo.Price
}

// Less orders by total duration, then leg one id, then leg two id with a
// missing second leg sorting last.
func (it Itinerary) Less(other Itinerary) bool {
	if a, b := it.TotalDuration(), other.TotalDuration(); a != b {
		return a < b
	}
	if it.LegOne.ID != other.LegOne.ID {
		return it.LegOne.ID < other.LegOne.ID
	}
	switch {
	case it.LegTwo == nil:
		return false
	case other.LegTwo == nil:
		return true
	default:
		return it.LegTwo.ID < other.LegTwo.ID
	}
}

func SortItineraries(list []Itinerary) {
	sort.SliceStable(list, func(i, j int) bool { return list[i].Less(list[j]) })
}

// SearchQuery describes one itinerary search.
type SearchQuery struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	DayOfMonth  int    `json:"day"`
	DirectOnly  bool   `json:"direct"`
	MaxResults  int    `json:"limit"`
}
