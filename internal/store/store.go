// Package store keeps a short-lived client-side cache in front of the
// Soma API, mirroring the staleness windows the web client uses.
// Queries within the staleness window are served from memory; mutations
// invalidate the query families they affect so the next read refetches.
package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/projectsoma/soma/pkg/client"
	"github.com/projectsoma/soma/pkg/domain"
)

// Staleness windows per query family.
const (
	staleUserInformation = 5 * time.Minute
	staleDailySessions   = time.Minute
	staleSession         = 5 * time.Minute
	staleProducts        = 5 * time.Minute
	staleEligibility     = 30 * time.Second
)

// Query family key prefixes. Invalidation matches on prefix so a single
// family covers all its parameterizations.
const (
	keyUserInformation = "user-information"
	keyDailySessions   = "daily-sessions"
	keySessions        = "sessions"
	keyProducts        = "products"
	keyEligibility     = "can-make-reservation"
)

type entry struct {
	value     any
	fetchedAt time.Time
}

// Store is a caching facade over the API client. It is safe for use
// from concurrent tea.Cmd goroutines.
type Store struct {
	api *client.Client

	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

// New creates a Store over the given API client.
func New(api *client.Client) *Store {
	return &Store{
		api:     api,
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

func (s *Store) cached(key string, maxAge time.Duration) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok || s.now().Sub(e.fetchedAt) > maxAge {
		return nil, false
	}
	return e.value, true
}

func (s *Store) put(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{value: value, fetchedAt: s.now()}
}

// invalidate drops every cached entry whose key starts with one of the
// given family prefixes.
func (s *Store) invalidate(families ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.entries {
		for _, fam := range families {
			if strings.HasPrefix(key, fam) {
				delete(s.entries, key)
				break
			}
		}
	}
}

// --- queries ---

// UserInformation returns the aggregate profile/entitlement view,
// cached for five minutes.
func (s *Store) UserInformation(ctx context.Context, userID uuid.UUID) (*domain.UserInformation, error) {
	key := keyUserInformation + ":" + userID.String()
	if v, ok := s.cached(key, staleUserInformation); ok {
		return v.(*domain.UserInformation), nil
	}
	info, err := s.api.GetUserInformation(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.put(key, info)
	return info, nil
}

// DailySessions returns the timetable for a day, cached for one minute.
func (s *Store) DailySessions(ctx context.Context, date string, filters client.DailySessionFilters) ([]domain.DailySession, error) {
	key := keyDailySessions + ":" + date + ":" + filtersKey(filters)
	if v, ok := s.cached(key, staleDailySessions); ok {
		return v.([]domain.DailySession), nil
	}
	sessions, err := s.api.DailySessions(ctx, date, filters)
	if err != nil {
		return nil, err
	}
	s.put(key, sessions)
	return sessions, nil
}

// Session returns a single session with reservations, cached for five
// minutes.
func (s *Store) Session(ctx context.Context, id uuid.UUID) (*domain.DailySession, error) {
	key := keySessions + ":" + id.String()
	if v, ok := s.cached(key, staleSession); ok {
		return v.(*domain.DailySession), nil
	}
	session, err := s.api.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	s.put(key, session)
	return session, nil
}

// Products returns the active catalog, cached for five minutes.
func (s *Store) Products(ctx context.Context) (*domain.ProductList, error) {
	if v, ok := s.cached(keyProducts, staleProducts); ok {
		return v.(*domain.ProductList), nil
	}
	list, err := s.api.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	s.put(keyProducts, list)
	return list, nil
}

// CanMakeReservation returns the authoritative eligibility verdict,
// cached for thirty seconds.
func (s *Store) CanMakeReservation(ctx context.Context, userID, sessionID uuid.UUID) (*domain.CanMakeReservation, error) {
	key := keyEligibility + ":" + userID.String() + ":" + sessionID.String()
	if v, ok := s.cached(key, staleEligibility); ok {
		return v.(*domain.CanMakeReservation), nil
	}
	out, err := s.api.CanMakeReservation(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	s.put(key, out)
	return out, nil
}

// CheckoutURL is a pass-through: checkout sessions are single-use and
// must never be cached.
func (s *Store) CheckoutURL(ctx context.Context, productID, userID uuid.UUID) (string, error) {
	return s.api.CheckoutURL(ctx, productID, userID)
}

// --- mutations ---

// ReserveFromSubscription books against a plain subscription and
// invalidates the affected query families.
func (s *Store) ReserveFromSubscription(ctx context.Context, sessionID, userID, subscriptionID uuid.UUID) (*domain.Reservation, error) {
	r, err := s.api.ReserveFromSubscription(ctx, sessionID, userID, subscriptionID)
	if err != nil {
		return nil, err
	}
	s.invalidate(keyUserInformation, keyDailySessions, keySessions, keyEligibility)
	return r, nil
}

// ReserveFromComboSubscription books against a combo subscription.
func (s *Store) ReserveFromComboSubscription(ctx context.Context, sessionID, userID, subscriptionID uuid.UUID) (*domain.Reservation, error) {
	r, err := s.api.ReserveFromComboSubscription(ctx, sessionID, userID, subscriptionID)
	if err != nil {
		return nil, err
	}
	s.invalidate(keyUserInformation, keyDailySessions, keySessions, keyEligibility)
	return r, nil
}

// ReserveFromPack books against a pack.
func (s *Store) ReserveFromPack(ctx context.Context, sessionID, userID, packID uuid.UUID) (*domain.Reservation, error) {
	r, err := s.api.ReserveFromPack(ctx, sessionID, userID, packID)
	if err != nil {
		return nil, err
	}
	s.invalidate(keyUserInformation, keyDailySessions, keySessions, keyEligibility)
	return r, nil
}

// CancelReservation cancels a reservation and invalidates the affected
// query families.
func (s *Store) CancelReservation(ctx context.Context, id uuid.UUID) error {
	if err := s.api.CancelReservation(ctx, id); err != nil {
		return err
	}
	s.invalidate(keyUserInformation, keyDailySessions, keySessions, keyEligibility)
	return nil
}

// TakeAttendance submits bulk attendance and refreshes session queries.
func (s *Store) TakeAttendance(ctx context.Context, req client.TakeAttendanceRequest) (*domain.AttendanceResult, error) {
	out, err := s.api.TakeAttendance(ctx, req)
	if err != nil {
		return nil, err
	}
	s.invalidate(keySessions, keyDailySessions)
	return out, nil
}

// CreateSession schedules a session and refreshes timetable queries.
func (s *Store) CreateSession(ctx context.Context, req client.CreateSessionRequest) (*domain.Session, error) {
	created, err := s.api.CreateSession(ctx, req)
	if err != nil {
		return nil, err
	}
	s.invalidate(keySessions, keyDailySessions)
	return created, nil
}

// UpdateSession updates a session and refreshes timetable queries.
func (s *Store) UpdateSession(ctx context.Context, id uuid.UUID, req client.UpdateSessionRequest) (*domain.Session, error) {
	updated, err := s.api.UpdateSession(ctx, id, req)
	if err != nil {
		return nil, err
	}
	s.invalidate(keySessions, keyDailySessions)
	return updated, nil
}

// DeleteSession removes a session and refreshes timetable queries.
func (s *Store) DeleteSession(ctx context.Context, id uuid.UUID) error {
	if err := s.api.DeleteSession(ctx, id); err != nil {
		return err
	}
	s.invalidate(keySessions, keyDailySessions)
	return nil
}

// CancelSubscription cancels a subscription and refreshes the profile
// view.
func (s *Store) CancelSubscription(ctx context.Context, id uuid.UUID) error {
	if err := s.api.CancelSubscription(ctx, id); err != nil {
		return err
	}
	s.invalidate(keyUserInformation)
	return nil
}

// DeleteCancelledSubscription removes an already-cancelled subscription.
func (s *Store) DeleteCancelledSubscription(ctx context.Context, id uuid.UUID) error {
	if err := s.api.DeleteCancelledSubscription(ctx, id); err != nil {
		return err
	}
	s.invalidate(keyUserInformation)
	return nil
}

// PayOnDemandSubscription triggers an out-of-cycle renewal.
func (s *Store) PayOnDemandSubscription(ctx context.Context, id uuid.UUID) error {
	if err := s.api.PayOnDemandSubscription(ctx, id); err != nil {
		return err
	}
	s.invalidate(keyUserInformation)
	return nil
}

// ChangeSubscriptionProduct swaps the subscription's product.
func (s *Store) ChangeSubscriptionProduct(ctx context.Context, subscriptionID, productID uuid.UUID) error {
	if err := s.api.ChangeSubscriptionProduct(ctx, subscriptionID, productID); err != nil {
		return err
	}
	s.invalidate(keyUserInformation)
	return nil
}

// UpdateUser applies a partial user update and refreshes the profile
// view.
func (s *Store) UpdateUser(ctx context.Context, userID uuid.UUID, req client.UpdateUserRequest) (*domain.User, error) {
	u, err := s.api.UpdateUser(ctx, userID, req)
	if err != nil {
		return nil, err
	}
	s.invalidate(keyUserInformation)
	return u, nil
}

func filtersKey(f client.DailySessionFilters) string {
	var b strings.Builder
	for _, t := range f.Types {
		b.WriteString(string(t))
		b.WriteByte(',')
	}
	if f.RoomID != nil {
		b.WriteString("r=" + f.RoomID.String() + ",")
	}
	if f.TeacherID != nil {
		b.WriteString("t=" + f.TeacherID.String() + ",")
	}
	if f.Status != "" {
		b.WriteString("s=" + string(f.Status))
	}
	return b.String()
}
