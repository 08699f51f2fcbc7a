package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/spaceshare/internal/model"
)

var _ Store = (*MemStore)(nil)

// MemStore keeps every collection in process memory. Records live in
// slices indexed by id-1, so lookups are O(1) and iteration follows
// insertion order. Nothing is ever removed, which keeps ids dense and
// never reused. A single RWMutex makes each operation atomic; values are
// copied on the way in and out so callers never share stored state.
type MemStore struct {
	mu       sync.RWMutex
	now      func() time.Time
	users    []model.User
	listings []model.Listing
	bookings []model.Booking
	reviews  []model.Review
	messages []model.Message
}

// MemOption customizes a MemStore.
type MemOption func(*MemStore)

// WithClock replaces time.Now as the source of CreatedAt stamps.
func WithClock(now func() time.Time) MemOption {
	return func(s *MemStore) { s.now = now }
}

// NewMemStore returns an empty store. Seed it with the seed package.
func NewMemStore(opts ...MemOption) *MemStore {
	s := &MemStore{now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// index converts an id to a slice position, reporting false when the id is
// outside [1, n].
func index(id uint64, n int) (int, bool) {
	if id == 0 || id > uint64(n) {
		return 0, false
	}
	return int(id - 1), true
}

// ----- users -----

func (s *MemStore) GetUser(_ context.Context, id uint64) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := index(id, len(s.users))
	if !ok {
		return nil, ErrUserNotFound
	}
	u := s.users[i].Clone()
	return &u, nil
}

func (s *MemStore) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.findUser(func(u *model.User) bool { return strings.EqualFold(u.Username, username) }); i >= 0 {
		u := s.users[i].Clone()
		return &u, nil
	}
	return nil, ErrUserNotFound
}

func (s *MemStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.findUser(func(u *model.User) bool { return strings.EqualFold(u.Email, email) }); i >= 0 {
		u := s.users[i].Clone()
		return &u, nil
	}
	return nil, ErrUserNotFound
}

// findUser returns the position of the first user matching fn, or -1.
// Callers hold s.mu.
func (s *MemStore) findUser(fn func(*model.User) bool) int {
	for i := range s.users {
		if fn(&s.users[i]) {
			return i
		}
	}
	return -1
}

func (s *MemStore) CreateUser(_ context.Context, in model.UserFields) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertUser(in), nil
}

// RegisterUser performs the uniqueness check and the insert under the same
// write lock, so two concurrent registrations cannot both succeed.
func (s *MemStore) RegisterUser(_ context.Context, in model.UserFields) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findUser(func(u *model.User) bool { return strings.EqualFold(u.Username, in.Username) }) >= 0 {
		return nil, ErrUsernameTaken
	}
	if s.findUser(func(u *model.User) bool { return strings.EqualFold(u.Email, in.Email) }) >= 0 {
		return nil, ErrEmailTaken
	}
	return s.insertUser(in), nil
}

func (s *MemStore) insertUser(in model.UserFields) *model.User {
	u := model.User{ID: uint64(len(s.users) + 1), UserFields: in, CreatedAt: s.now()}
	u = u.Clone()
	s.users = append(s.users, u)
	out := u.Clone()
	return &out
}

func (s *MemStore) UpdateUser(_ context.Context, id uint64, p model.UserPatch) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := index(id, len(s.users))
	if !ok {
		return nil, ErrUserNotFound
	}
	p.Apply(&s.users[i])
	u := s.users[i].Clone()
	return &u, nil
}

// ----- listings -----

func (s *MemStore) GetListing(_ context.Context, id uint64) (*model.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := index(id, len(s.listings))
	if !ok {
		return nil, ErrListingNotFound
	}
	l := s.listings[i].Clone()
	return &l, nil
}

func (s *MemStore) GetListingsByHost(_ context.Context, hostID uint64) ([]model.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeListingsOf(hostID), nil
}

// activeListingsOf returns copies of hostID's active listings. Callers hold s.mu.
func (s *MemStore) activeListingsOf(hostID uint64) []model.Listing {
	out := []model.Listing{}
	for i := range s.listings {
		if l := &s.listings[i]; l.IsActive && l.HostID == hostID {
			out = append(out, l.Clone())
		}
	}
	return out
}

func (s *MemStore) GetListings(_ context.Context, f *model.ListingFilters) ([]model.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Listing{}
	for i := range s.listings {
		if matchesListing(&s.listings[i], f) {
			out = append(out, s.listings[i].Clone())
		}
	}
	return out, nil
}

func (s *MemStore) CreateListing(_ context.Context, in model.ListingFields) (*model.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := model.Listing{ID: uint64(len(s.listings) + 1), ListingFields: in, CreatedAt: s.now()}
	s.listings = append(s.listings, l.Clone())
	out := l.Clone()
	return &out, nil
}

func (s *MemStore) UpdateListing(_ context.Context, id uint64, p model.ListingPatch) (*model.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := index(id, len(s.listings))
	if !ok {
		return nil, ErrListingNotFound
	}
	p.Apply(&s.listings[i])
	l := s.listings[i].Clone()
	return &l, nil
}

func (s *MemStore) DeleteListing(_ context.Context, id uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := index(id, len(s.listings))
	if !ok {
		return false, nil
	}
	s.listings[i].IsActive = false
	return true, nil
}

// ----- bookings -----

func (s *MemStore) GetBooking(_ context.Context, id uint64) (*model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := index(id, len(s.bookings))
	if !ok {
		return nil, ErrBookingNotFound
	}
	b := s.bookings[i].Clone()
	return &b, nil
}

func (s *MemStore) GetBookingsByListing(_ context.Context, listingID uint64) ([]model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bookingsWhere(func(b *model.Booking) bool { return b.ListingID == listingID }), nil
}

func (s *MemStore) GetBookingsByRenter(_ context.Context, renterID uint64) ([]model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bookingsWhere(func(b *model.Booking) bool { return b.RenterID == renterID }), nil
}

// GetBookingsByHost resolves the host's active listings first and then
// collects bookings on any of them. Nothing is cached between calls.
func (s *MemStore) GetBookingsByHost(_ context.Context, hostID uint64) ([]model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	owned := map[uint64]struct{}{}
	for _, l := range s.activeListingsOf(hostID) {
		owned[l.ID] = struct{}{}
	}
	if len(owned) == 0 {
		return []model.Booking{}, nil
	}
	return s.bookingsWhere(func(b *model.Booking) bool {
		_, ok := owned[b.ListingID]
		return ok
	}), nil
}

// bookingsWhere returns copies of the bookings matching fn. Callers hold s.mu.
func (s *MemStore) bookingsWhere(fn func(*model.Booking) bool) []model.Booking {
	out := []model.Booking{}
	for i := range s.bookings {
		if fn(&s.bookings[i]) {
			out = append(out, s.bookings[i].Clone())
		}
	}
	return out
}

func (s *MemStore) CreateBooking(_ context.Context, in model.BookingFields) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := model.Booking{ID: uint64(len(s.bookings) + 1), BookingFields: in, CreatedAt: s.now()}
	b = b.Clone()
	s.bookings = append(s.bookings, b)
	out := b.Clone()
	return &out, nil
}

func (s *MemStore) UpdateBooking(_ context.Context, id uint64, p model.BookingPatch) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := index(id, len(s.bookings))
	if !ok {
		return nil, ErrBookingNotFound
	}
	p.Apply(&s.bookings[i])
	b := s.bookings[i].Clone()
	return &b, nil
}

// ----- reviews -----

func (s *MemStore) GetReview(_ context.Context, id uint64) (*model.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := index(id, len(s.reviews))
	if !ok {
		return nil, ErrReviewNotFound
	}
	r := s.reviews[i].Clone()
	return &r, nil
}

func (s *MemStore) GetReviewsByListing(_ context.Context, listingID uint64) ([]model.Review, error) {
	return s.publicReviews(func(r *model.Review) bool {
		return r.ListingID != nil && *r.ListingID == listingID
	}), nil
}

func (s *MemStore) GetReviewsByUser(_ context.Context, userID uint64) ([]model.Review, error) {
	return s.publicReviews(func(r *model.Review) bool { return r.ReviewedID == userID }), nil
}

func (s *MemStore) publicReviews(fn func(*model.Review) bool) []model.Review {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Review{}
	for i := range s.reviews {
		if r := &s.reviews[i]; r.IsPublic && fn(r) {
			out = append(out, r.Clone())
		}
	}
	return out
}

func (s *MemStore) CreateReview(_ context.Context, in model.ReviewFields) (*model.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := model.Review{ID: uint64(len(s.reviews) + 1), ReviewFields: in, CreatedAt: s.now()}
	r = r.Clone()
	s.reviews = append(s.reviews, r)
	out := r.Clone()
	return &out, nil
}

// ----- messages -----

func (s *MemStore) GetMessage(_ context.Context, id uint64) (*model.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := index(id, len(s.messages))
	if !ok {
		return nil, ErrMessageNotFound
	}
	m := s.messages[i].Clone()
	return &m, nil
}

func (s *MemStore) GetMessagesBetweenUsers(_ context.Context, userA, userB uint64) ([]model.Message, error) {
	out := s.filterMessages(func(m *model.Message) bool {
		return (m.SenderID == userA && m.ReceiverID == userB) ||
			(m.SenderID == userB && m.ReceiverID == userA)
	})
	sortMessages(out, true)
	return out, nil
}

func (s *MemStore) GetMessagesByUser(_ context.Context, userID uint64) ([]model.Message, error) {
	out := s.filterMessages(func(m *model.Message) bool {
		return m.SenderID == userID || m.ReceiverID == userID
	})
	sortMessages(out, false)
	return out, nil
}

func (s *MemStore) filterMessages(fn func(*model.Message) bool) []model.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Message{}
	for i := range s.messages {
		if fn(&s.messages[i]) {
			out = append(out, s.messages[i].Clone())
		}
	}
	return out
}

// sortMessages orders by CreatedAt, breaking ties by id so messages created
// within the same clock tick keep their insertion order.
func sortMessages(ms []model.Message, ascending bool) {
	sort.SliceStable(ms, func(i, j int) bool {
		a, b := ms[i], ms[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt) == ascending
		}
		return (a.ID < b.ID) == ascending
	})
}

func (s *MemStore) CreateMessage(_ context.Context, in model.MessageFields) (*model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := model.Message{ID: uint64(len(s.messages) + 1), MessageFields: in, CreatedAt: s.now()}
	m = m.Clone()
	s.messages = append(s.messages, m)
	out := m.Clone()
	return &out, nil
}

func (s *MemStore) MarkMessageAsRead(_ context.Context, id uint64) (*model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := index(id, len(s.messages))
	if !ok {
		return nil, ErrMessageNotFound
	}
	s.messages[i].IsRead = true
	m := s.messages[i].Clone()
	return &m, nil
}
