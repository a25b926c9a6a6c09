package orchestrators

import (
	"context"
	"errors"
	"time"

	"compreg/internal/adapters/email"
	"compreg/internal/domain/account"
	"compreg/internal/domain/competition"
	"compreg/internal/domain/outbox"
	"compreg/internal/domain/registration"
)

var errMockNotFound = errors.New("not found")

var fixedTime = time.Date(2025, 9, 15, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

func fixedID() string { return "test-id-001" }

// testCompetition returns a competition used across orchestrator tests:
// base fee 15000, three events, window 2025-08-01 through 2025-12-10.
func testCompetition() competition.Competition {
	return competition.Competition{
		ID:      "comp-1",
		Name:    "Spring Open 2025",
		Date:    time.Date(2025, 12, 14, 0, 0, 0, 0, time.UTC),
		BaseFee: 15000,
		EventFees: map[string]float64{
			"3x3": 5000,
			"4x4": 7000,
			"OH":  6000,
		},
		Events:            []string{"3x3", "4x4", "OH"},
		RegistrationOpen:  time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
		RegistrationClose: time.Date(2025, 12, 10, 23, 59, 59, 0, time.UTC),
		CreatedBy:         "admin-1",
		CreatedAt:         time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
	}
}

// mockCompetitionStore implements CompetitionStore for testing.
type mockCompetitionStore struct {
	competitions map[string]competition.Competition
	saved        []competition.Competition
}

func newMockCompetitionStore(comps ...competition.Competition) *mockCompetitionStore {
	m := &mockCompetitionStore{competitions: make(map[string]competition.Competition)}
	for _, c := range comps {
		m.competitions[c.ID] = c
	}
	return m
}

func (m *mockCompetitionStore) GetByID(_ context.Context, id string) (competition.Competition, error) {
	c, ok := m.competitions[id]
	if !ok {
		return competition.Competition{}, errMockNotFound
	}
	return c, nil
}

func (m *mockCompetitionStore) Save(_ context.Context, c competition.Competition) error {
	m.competitions[c.ID] = c
	m.saved = append(m.saved, c)
	return nil
}

// mockRegistrationStore implements RegistrationStore for testing.
type mockRegistrationStore struct {
	registrations map[string]registration.Registration
	createErr     error
}

func newMockRegistrationStore(regs ...registration.Registration) *mockRegistrationStore {
	m := &mockRegistrationStore{registrations: make(map[string]registration.Registration)}
	for _, r := range regs {
		m.registrations[r.ID] = r
	}
	return m
}

func (m *mockRegistrationStore) GetByID(_ context.Context, id string) (registration.Registration, error) {
	r, ok := m.registrations[id]
	if !ok {
		return registration.Registration{}, errMockNotFound
	}
	return r, nil
}

func (m *mockRegistrationStore) GetByUserAndCompetition(_ context.Context, userID, competitionID string) (registration.Registration, error) {
	for _, r := range m.registrations {
		if r.UserID == userID && r.CompetitionID == competitionID {
			return r, nil
		}
	}
	return registration.Registration{}, errMockNotFound
}

func (m *mockRegistrationStore) Create(_ context.Context, r registration.Registration) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.registrations[r.ID] = r
	return nil
}

func (m *mockRegistrationStore) Save(_ context.Context, r registration.Registration) error {
	m.registrations[r.ID] = r
	return nil
}

func (m *mockRegistrationStore) CountActive(_ context.Context, competitionID string) (int, error) {
	count := 0
	for _, r := range m.registrations {
		if r.CompetitionID == competitionID && r.Status != registration.StatusCancelled {
			count++
		}
	}
	return count, nil
}

// mockAccountStore implements the account store interfaces for testing.
type mockAccountStore struct {
	accounts map[string]account.Account // keyed by ID
}

func newMockAccountStore(accts ...account.Account) *mockAccountStore {
	m := &mockAccountStore{accounts: make(map[string]account.Account)}
	for _, a := range accts {
		m.accounts[a.ID] = a
	}
	return m
}

func (m *mockAccountStore) GetByID(_ context.Context, id string) (account.Account, error) {
	a, ok := m.accounts[id]
	if !ok {
		return account.Account{}, errMockNotFound
	}
	return a, nil
}

func (m *mockAccountStore) GetByEmail(_ context.Context, email string) (account.Account, error) {
	for _, a := range m.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return account.Account{}, errMockNotFound
}

func (m *mockAccountStore) Save(_ context.Context, a account.Account) error {
	m.accounts[a.ID] = a
	return nil
}

func (m *mockAccountStore) Count(_ context.Context) (int, error) {
	return len(m.accounts), nil
}

// mockOutboxStore implements OutboxStore for testing.
type mockOutboxStore struct {
	entries map[string]outbox.Entry
	order   []string
}

func newMockOutboxStore(entries ...outbox.Entry) *mockOutboxStore {
	m := &mockOutboxStore{entries: make(map[string]outbox.Entry)}
	for _, e := range entries {
		m.entries[e.ID] = e
		m.order = append(m.order, e.ID)
	}
	return m
}

func (m *mockOutboxStore) GetByID(_ context.Context, id string) (outbox.Entry, error) {
	e, ok := m.entries[id]
	if !ok {
		return outbox.Entry{}, errMockNotFound
	}
	return e, nil
}

func (m *mockOutboxStore) Save(_ context.Context, e outbox.Entry) error {
	if _, ok := m.entries[e.ID]; !ok {
		m.order = append(m.order, e.ID)
	}
	m.entries[e.ID] = e
	return nil
}

// captureSender implements email.Sender and records every request.
type captureSender struct {
	sent []email.SendRequest
}

func (s *captureSender) Send(_ context.Context, req email.SendRequest) (email.SendResult, error) {
	s.sent = append(s.sent, req)
	return email.SendResult{MessageID: "msg-1", SentAt: fixedTime}, nil
}

func (m *mockOutboxStore) ListPending(_ context.Context, limit int) ([]outbox.Entry, error) {
	var out []outbox.Entry
	for _, id := range m.order {
		e := m.entries[id]
		if e.CanRetry() {
			out = append(out, e)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
