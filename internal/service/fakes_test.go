package service

import (
	"context"
	"sync"
	"time"

	"github.com/hellbot-id/hellbot/internal/domain"
)

// memSettings implements SettingsStore with the same contract as the
// Postgres repo: lazy defaults on Get, mutex-serialized whole-record
// read-modify-write on Update.
type memSettings struct {
	mu     sync.Mutex
	groups map[string]*domain.GroupSettings
}

func newMemSettings() *memSettings {
	return &memSettings{groups: map[string]*domain.GroupSettings{}}
}

func (m *memSettings) Get(_ context.Context, groupID string) (*domain.GroupSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.groups[groupID]; ok {
		return cloneSettings(st), nil
	}
	return domain.NewGroupSettings(groupID), nil
}

func (m *memSettings) GetAll(_ context.Context) ([]domain.GroupSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.GroupSettings, 0, len(m.groups))
	for _, st := range m.groups {
		out = append(out, *cloneSettings(st))
	}
	return out, nil
}

func (m *memSettings) Update(_ context.Context, groupID string, mutate func(*domain.GroupSettings) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.groups[groupID]
	if !ok {
		st = domain.NewGroupSettings(groupID)
	}
	work := cloneSettings(st)
	if err := mutate(work); err != nil {
		return err
	}
	m.groups[groupID] = work
	return nil
}

func cloneSettings(st *domain.GroupSettings) *domain.GroupSettings {
	cp := *st
	if st.RentExpiry != nil {
		e := *st.RentExpiry
		cp.RentExpiry = &e
	}
	if st.RentOwner != nil {
		o := *st.RentOwner
		cp.RentOwner = &o
	}
	cp.CommandPermissions = make(map[string]domain.PermissionLevel, len(st.CommandPermissions))
	for k, v := range st.CommandPermissions {
		cp.CommandPermissions[k] = v
	}
	return &cp
}

type memTracking struct {
	mu   sync.Mutex
	last map[domain.NotificationKey]string
}

func newMemTracking() *memTracking {
	return &memTracking{last: map[domain.NotificationKey]string{}}
}

func (m *memTracking) MarkSent(_ context.Context, key domain.NotificationKey, day string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.last[key]; ok && prev >= day {
		return false, nil
	}
	m.last[key] = day
	return true, nil
}

func (m *memTracking) Prune(_ context.Context, before time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := before.Format(dateLayout)
	for k, day := range m.last {
		if day < cutoff {
			delete(m.last, k)
		}
	}
	return nil
}

type memOrders struct {
	mu      sync.Mutex
	orders  map[string]*domain.PaymentOrder
	readErr error
}

func newMemOrders() *memOrders {
	return &memOrders{orders: map[string]*domain.PaymentOrder{}}
}

func (m *memOrders) Create(_ context.Context, o *domain.PaymentOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.orders[o.OrderID] = &cp
	return nil
}

func (m *memOrders) GetByOrderID(_ context.Context, orderID string) (*domain.PaymentOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	o, ok := m.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

type memEvents struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newMemEvents() *memEvents {
	return &memEvents{seen: map[string]bool{}}
}

func (m *memEvents) MarkProcessed(_ context.Context, orderID string, status domain.PaymentStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := orderID + "|" + string(status)
	if m.seen[key] {
		return false, nil
	}
	m.seen[key] = true
	return true, nil
}

type sentMessage struct {
	To   string
	Text string
}

type fakeMessenger struct {
	mu       sync.Mutex
	groups   []sentMessage
	contacts []sentMessage
	fail     map[string]error
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{fail: map[string]error{}}
}

func (f *fakeMessenger) SendToGroup(_ context.Context, groupID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.fail[groupID]; ok {
		return err
	}
	f.groups = append(f.groups, sentMessage{To: groupID, Text: text})
	return nil
}

func (f *fakeMessenger) SendToContact(_ context.Context, contactID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.fail[contactID]; ok {
		return err
	}
	f.contacts = append(f.contacts, sentMessage{To: contactID, Text: text})
	return nil
}

func (f *fakeMessenger) groupSends() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.groups...)
}

func (f *fakeMessenger) contactSends() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.contacts...)
}

type fakeAdmins struct {
	admins map[string]bool // "groupID|actorID"
}

func (f *fakeAdmins) IsGroupAdmin(_ context.Context, groupID, actorID string) (bool, error) {
	return f.admins[groupID+"|"+actorID], nil
}
