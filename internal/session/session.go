// Package session holds the principal of one engine instance and the
// candidates of its most recent search.
package session

import (
	"github.com/Domenick1991/flightbooking/internal/domain"
)

// Session starts logged out. Once logged in it stays logged in for its
// lifetime; there is no logout.
type Session struct {
	username   string
	candidates []domain.Itinerary
}

func New() *Session {
	return &Session{}
}

func (s *Session) LoggedIn() bool {
	return s.username != ""
}

// Login records username as the principal. It fails if someone is already
// logged in, whoever that is.
func (s *Session) Login(username string) error {
	if s.LoggedIn() {
		return domain.ErrAlreadyAuthenticated
	}
	s.username = username
	return nil
}

func (s *Session) Username() (string, error) {
	if !s.LoggedIn() {
		return "", domain.ErrNotAuthenticated
	}
	return s.username, nil
}

// ReplaceCandidates swaps in the result of a new search wholesale.
func (s *Session) ReplaceCandidates(list []domain.Itinerary) {
	s.candidates = append([]domain.Itinerary(nil), list...)
}

// Candidate returns the itinerary at index i of the last search.
func (s *Session) Candidate(i int) (domain.Itinerary, error) {
	if i < 0 || i >= len(s.candidates) {
		return domain.Itinerary{}, domain.ErrInvalidItineraryReference
	}
	return s.candidates[i], nil
}

func (s *Session) Candidates() []domain.Itinerary {
	return append([]domain.Itinerary(nil), s.candidates...)
}
