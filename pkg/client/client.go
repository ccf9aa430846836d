package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/projectsoma/soma/pkg/domain"
)

const (
	defaultTimeout    = 15 * time.Second
	defaultRetries    = 3
	defaultRetryDelay = time.Second
)

// Client is the Soma API client. Non-4xx failures are retried with
// exponential backoff; 4xx responses and timeouts surface immediately.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	timeout    time.Duration
	retries    int
	retryDelay time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithRetries sets how many times a retryable failure is re-attempted.
func WithRetries(n int) Option {
	return func(c *Client) { c.retries = n }
}

// WithRetryDelay sets the base backoff delay; attempt N waits delay*2^N.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) { c.retryDelay = d }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a new API client.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{},
		timeout:    defaultTimeout,
		retries:    defaultRetries,
		retryDelay: defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// --- Users ---

// LoginRequest echoes the identity-provider profile to register or
// refresh the platform user.
type LoginRequest struct {
	ExternalID    string `json:"externalId"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"emailVerified"`
}

// Login upserts the authenticated user from the identity-provider
// profile and returns the platform user record.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*domain.User, error) {
	var u domain.User
	if err := c.post(ctx, "/users/login", req, &u); err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	return &u, nil
}

// UpdateUserRequest is a partial user update. Nil fields are omitted
// from the PATCH body.
type UpdateUserRequest struct {
	Name                  *string                 `json:"name,omitempty"`
	Surname               *string                 `json:"surname,omitempty"`
	BirthDate             *string                 `json:"birthDate,omitempty"`
	PostalCode            *string                 `json:"postalCode,omitempty"`
	HowDidYouFindUs       *domain.HowDidYouFindUs `json:"howDidYouFindUs,omitempty"`
	LanguageCode          *string                 `json:"languageCode,omitempty"`
	OnboardingCompletedAt *time.Time              `json:"onboardingCompletedAt,omitempty"`
}

// UpdateUser applies a partial update to a user.
func (c *Client) UpdateUser(ctx context.Context, userID uuid.UUID, req UpdateUserRequest) (*domain.User, error) {
	var u domain.User
	if err := c.doRequest(ctx, http.MethodPatch, "/users/"+userID.String(), req, &u); err != nil {
		return nil, fmt.Errorf("client.UpdateUser: %w", err)
	}
	return &u, nil
}

// GetUserInformation returns the aggregate profile/entitlement view.
func (c *Client) GetUserInformation(ctx context.Context, userID uuid.UUID) (*domain.UserInformation, error) {
	var info domain.UserInformation
	if err := c.get(ctx, "/users/"+userID.String()+"/information", &info); err != nil {
		return nil, fmt.Errorf("client.GetUserInformation: %w", err)
	}
	return &info, nil
}

// --- Sessions ---

// DailySessionFilters narrows the daily timetable listing.
type DailySessionFilters struct {
	Types     []domain.SessionType
	RoomID    *uuid.UUID
	TeacherID *uuid.UUID
	Status    domain.SessionStatus
}

// DailySessions lists the sessions scheduled for a day (YYYY-MM-DD).
func (c *Client) DailySessions(ctx context.Context, date string, filters DailySessionFilters) ([]domain.DailySession, error) {
	params := url.Values{}
	params.Set("date", date)
	for _, t := range filters.Types {
		params.Add("type", string(t))
	}
	if filters.RoomID != nil {
		params.Set("roomId", filters.RoomID.String())
	}
	if filters.TeacherID != nil {
		params.Set("teacherId", filters.TeacherID.String())
	}
	if filters.Status != "" {
		params.Set("status", string(filters.Status))
	}

	var sessions []domain.DailySession
	if err := c.get(ctx, "/sessions/daily?"+params.Encode(), &sessions); err != nil {
		return nil, fmt.Errorf("client.DailySessions: %w", err)
	}
	return sessions, nil
}

// GetSession fetches a single session with its reservations.
func (c *Client) GetSession(ctx context.Context, id uuid.UUID) (*domain.DailySession, error) {
	var s domain.DailySession
	if err := c.get(ctx, "/sessions/"+id.String(), &s); err != nil {
		return nil, fmt.Errorf("client.GetSession: %w", err)
	}
	return &s, nil
}

// CreateSessionRequest is the payload for scheduling a new session.
type CreateSessionRequest struct {
	Type         domain.SessionType `json:"type"`
	Day          string             `json:"day"`
	StartHour    string             `json:"startHour"`
	EndHour      string             `json:"endHour"`
	RoomID       *uuid.UUID         `json:"roomId,omitempty"`
	TeacherID    *uuid.UUID         `json:"teacherId,omitempty"`
	Observations string             `json:"observations,omitempty"`
}

// CreateSession schedules a new session (staff only).
func (c *Client) CreateSession(ctx context.Context, req CreateSessionRequest) (*domain.Session, error) {
	var s domain.Session
	if err := c.post(ctx, "/sessions", req, &s); err != nil {
		return nil, fmt.Errorf("client.CreateSession: %w", err)
	}
	return &s, nil
}

// UpdateSessionRequest is a partial session update (staff only).
type UpdateSessionRequest struct {
	Type         *domain.SessionType   `json:"type,omitempty"`
	Status       *domain.SessionStatus `json:"status,omitempty"`
	Day          *string               `json:"day,omitempty"`
	StartHour    *string               `json:"startHour,omitempty"`
	EndHour      *string               `json:"endHour,omitempty"`
	RoomID       *uuid.UUID            `json:"roomId,omitempty"`
	TeacherID    *uuid.UUID            `json:"teacherId,omitempty"`
	Observations *string               `json:"observations,omitempty"`
}

// UpdateSession applies a partial update to a session (staff only).
func (c *Client) UpdateSession(ctx context.Context, id uuid.UUID, req UpdateSessionRequest) (*domain.Session, error) {
	var s domain.Session
	if err := c.doRequest(ctx, http.MethodPatch, "/sessions/"+id.String(), req, &s); err != nil {
		return nil, fmt.Errorf("client.UpdateSession: %w", err)
	}
	return &s, nil
}

// DeleteSession removes a session (staff only).
func (c *Client) DeleteSession(ctx context.Context, id uuid.UUID) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/sessions/"+id.String(), nil, nil); err != nil {
		return fmt.Errorf("client.DeleteSession: %w", err)
	}
	return nil
}

// --- Products ---

// ListProducts returns the active catalog, optionally narrowed to the
// given product types, grouped by type.
func (c *Client) ListProducts(ctx context.Context, types ...domain.ProductType) (*domain.ProductList, error) {
	params := url.Values{}
	params.Set("active", "true")
	for _, t := range types {
		params.Add("type", string(t))
	}

	var list domain.ProductList
	if err := c.get(ctx, "/products?"+params.Encode(), &list); err != nil {
		return nil, fmt.Errorf("client.ListProducts: %w", err)
	}
	return &list, nil
}

// GetProduct fetches a single product.
func (c *Client) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	var p domain.Product
	if err := c.get(ctx, "/products/"+id.String(), &p); err != nil {
		return nil, fmt.Errorf("client.GetProduct: %w", err)
	}
	return &p, nil
}

// CheckoutURL obtains a hosted-checkout URL for a product purchase.
func (c *Client) CheckoutURL(ctx context.Context, productID, userID uuid.UUID) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	path := "/products/" + productID.String() + "/users/" + userID.String() + "/checkout"
	if err := c.get(ctx, path, &out); err != nil {
		return "", fmt.Errorf("client.CheckoutURL: %w", err)
	}
	return out.URL, nil
}

// --- Reservations ---

// ReservationRequest identifies the session, user and entitlement a
// reservation is created against.
type ReservationRequest struct {
	SessionID      uuid.UUID  `json:"sessionId"`
	UserID         uuid.UUID  `json:"userId"`
	SubscriptionID *uuid.UUID `json:"subscriptionId,omitempty"`
	PackID         *uuid.UUID `json:"packId,omitempty"`
}

// ReserveFromSubscription books a session against a plain subscription.
func (c *Client) ReserveFromSubscription(ctx context.Context, sessionID, userID, subscriptionID uuid.UUID) (*domain.Reservation, error) {
	req := ReservationRequest{SessionID: sessionID, UserID: userID, SubscriptionID: &subscriptionID}
	var r domain.Reservation
	if err := c.post(ctx, "/reservations/from-subscription", req, &r); err != nil {
		return nil, fmt.Errorf("client.ReserveFromSubscription: %w", err)
	}
	return &r, nil
}

// ReserveFromComboSubscription books a session against a combo
// subscription.
func (c *Client) ReserveFromComboSubscription(ctx context.Context, sessionID, userID, subscriptionID uuid.UUID) (*domain.Reservation, error) {
	req := ReservationRequest{SessionID: sessionID, UserID: userID, SubscriptionID: &subscriptionID}
	var r domain.Reservation
	if err := c.post(ctx, "/reservations/from-combo-subscription", req, &r); err != nil {
		return nil, fmt.Errorf("client.ReserveFromComboSubscription: %w", err)
	}
	return &r, nil
}

// ReserveFromPack books a session against a pack.
func (c *Client) ReserveFromPack(ctx context.Context, sessionID, userID, packID uuid.UUID) (*domain.Reservation, error) {
	req := ReservationRequest{SessionID: sessionID, UserID: userID, PackID: &packID}
	var r domain.Reservation
	if err := c.post(ctx, "/reservations/from-pack", req, &r); err != nil {
		return nil, fmt.Errorf("client.ReserveFromPack: %w", err)
	}
	return &r, nil
}

// CancelReservation cancels a reservation.
func (c *Client) CancelReservation(ctx context.Context, id uuid.UUID) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/reservations/"+id.String(), nil, nil); err != nil {
		return fmt.Errorf("client.CancelReservation: %w", err)
	}
	return nil
}

// CanMakeReservation asks the backend for the authoritative eligibility
// verdict for a user and session.
func (c *Client) CanMakeReservation(ctx context.Context, userID, sessionID uuid.UUID) (*domain.CanMakeReservation, error) {
	params := url.Values{}
	params.Set("userId", userID.String())
	params.Set("sessionId", sessionID.String())

	var out domain.CanMakeReservation
	if err := c.get(ctx, "/reservations/can-make-reservation?"+params.Encode(), &out); err != nil {
		return nil, fmt.Errorf("client.CanMakeReservation: %w", err)
	}
	return &out, nil
}

// TakeAttendanceRequest marks attendance for a whole session at once.
type TakeAttendanceRequest struct {
	SessionID          uuid.UUID   `json:"sessionId"`
	AttendeeUserIDs    []uuid.UUID `json:"attendeeUserIds"`
	NotAttendedUserIDs []uuid.UUID `json:"notAttendedUserIds"`
}

// TakeAttendance submits bulk attendance for a session (staff only).
func (c *Client) TakeAttendance(ctx context.Context, req TakeAttendanceRequest) (*domain.AttendanceResult, error) {
	var out domain.AttendanceResult
	if err := c.post(ctx, "/reservations/attendance", req, &out); err != nil {
		return nil, fmt.Errorf("client.TakeAttendance: %w", err)
	}
	return &out, nil
}

// --- Subscriptions ---

// CancelSubscription schedules a subscription cancellation.
func (c *Client) CancelSubscription(ctx context.Context, id uuid.UUID) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/subscriptions/"+id.String(), nil, nil); err != nil {
		return fmt.Errorf("client.CancelSubscription: %w", err)
	}
	return nil
}

// DeleteCancelledSubscription removes a subscription that was already
// cancelled with the payment provider.
func (c *Client) DeleteCancelledSubscription(ctx context.Context, id uuid.UUID) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/subscriptions/"+id.String()+"/already-cancelled", nil, nil); err != nil {
		return fmt.Errorf("client.DeleteCancelledSubscription: %w", err)
	}
	return nil
}

// PayOnDemandSubscription triggers an out-of-cycle renewal payment.
func (c *Client) PayOnDemandSubscription(ctx context.Context, id uuid.UUID) error {
	if err := c.post(ctx, "/subscriptions/"+id.String()+"/pay-on-demand", nil, nil); err != nil {
		return fmt.Errorf("client.PayOnDemandSubscription: %w", err)
	}
	return nil
}

// ChangeSubscriptionProduct swaps the product a subscription bills for.
func (c *Client) ChangeSubscriptionProduct(ctx context.Context, subscriptionID, productID uuid.UUID) error {
	path := "/subscriptions/" + subscriptionID.String() + "/product/" + productID.String()
	if err := c.doRequest(ctx, http.MethodPatch, path, nil, nil); err != nil {
		return fmt.Errorf("client.ChangeSubscriptionProduct: %w", err)
	}
	return nil
}

// --- transport ---

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out)
}

// doRequest runs one endpoint call through the retry policy: 4xx and
// timeouts surface immediately, everything else is retried with
// exponential backoff until the attempt budget runs out.
func (c *Client) doRequest(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		payload = data
	}

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		err := c.attempt(ctx, method, path, payload, out)
		if err == nil {
			return nil
		}
		lastErr = err

		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.IsClientError() {
			return err
		}
		if IsTimeout(err) {
			return err
		}
		if attempt == c.retries {
			break
		}

		delay := c.retryDelay * (1 << attempt)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return lastErr
}

func (c *Client) attempt(ctx context.Context, method, path string, payload []byte, out any) error {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(reqCtx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Distinguish our own deadline from the caller giving up.
		if reqCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			return &TimeoutError{Endpoint: path, Timeout: c.timeout}
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &NetworkError{Endpoint: path, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode >= 400 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max error body
		if readErr != nil {
			return &APIError{Status: resp.StatusCode, Endpoint: path, Message: "failed to read body: " + readErr.Error()}
		}
		var apiErr struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil {
			if apiErr.Message != "" {
				return &APIError{Status: resp.StatusCode, Endpoint: path, Message: apiErr.Message}
			}
			if apiErr.Error != "" {
				return &APIError{Status: resp.StatusCode, Endpoint: path, Message: apiErr.Error}
			}
		}
		return &APIError{Status: resp.StatusCode, Endpoint: path, Message: string(respBody)}
	}

	if out != nil {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}
		// Some endpoints answer 2xx with an empty body.
		if len(bytes.TrimSpace(data)) == 0 {
			return nil
		}
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
