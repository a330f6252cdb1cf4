package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/fleet-rental/internal/model"
	"github.com/nurpe/fleet-rental/internal/repository"
)

type tables struct {
	vehicles      map[uuid.UUID]model.Vehicle
	clients       map[uuid.UUID]model.Client
	locations     map[uuid.UUID]model.Location
	maintenance   map[uuid.UUID]model.MaintenanceRecord
	calendar      map[uuid.UUID]model.CalendarEvent
	notifications map[uuid.UUID]model.Notification
	users         map[uuid.UUID]model.User
	documents     map[uuid.UUID]model.ContractDocument
}

func newTables() *tables {
	return &tables{
		vehicles:      make(map[uuid.UUID]model.Vehicle),
		clients:       make(map[uuid.UUID]model.Client),
		locations:     make(map[uuid.UUID]model.Location),
		maintenance:   make(map[uuid.UUID]model.MaintenanceRecord),
		calendar:      make(map[uuid.UUID]model.CalendarEvent),
		notifications: make(map[uuid.UUID]model.Notification),
		users:         make(map[uuid.UUID]model.User),
		documents:     make(map[uuid.UUID]model.ContractDocument),
	}
}

func (t *tables) clone() *tables {
	return &tables{
		vehicles:      cloneMap(t.vehicles),
		clients:       cloneMap(t.clients),
		locations:     cloneMap(t.locations),
		maintenance:   cloneMap(t.maintenance),
		calendar:      cloneMap(t.calendar),
		notifications: cloneMap(t.notifications),
		users:         cloneMap(t.users),
		documents:     cloneMap(t.documents),
	}
}

func cloneMap[V any](m map[uuid.UUID]V) map[uuid.UUID]V {
	out := make(map[uuid.UUID]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Store keeps every entity in process memory. Transactions are serialized
// and rolled back by restoring a snapshot taken when they start.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	data *tables
	now  func() time.Time
}

func NewStore() *Store {
	return &Store{data: newTables(), now: time.Now}
}

// WithClock overrides the timestamp source.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) Repositories() repository.Repositories {
	return s.repositories(false)
}

func (s *Store) WithinTx(ctx context.Context, fn func(repos repository.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	if err := fn(s.repositories(true)); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// SeedUser inserts a user directly; users are provisioned by the identity service.
func (s *Store) SeedUser(u model.User) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now().UTC()
	}
	s.data.users[u.ID] = u
	return u
}

func (s *Store) repositories(inTx bool) repository.Repositories {
	h := handle{store: s, inTx: inTx}
	return repository.Repositories{
		Vehicles:      &VehicleRepository{h},
		Clients:       &ClientRepository{h},
		Locations:     &LocationRepository{h},
		Maintenance:   &MaintenanceRepository{h},
		Calendar:      &CalendarRepository{h},
		Notifications: &NotificationRepository{h},
		Users:         &UserRepository{h},
		Documents:     &DocumentRepository{h},
	}
}

// handle is embedded by every repository; writes outside a transaction wait
// for any running transaction so a rollback cannot discard them.
type handle struct {
	store *Store
	inTx  bool
}

func (h handle) read(ctx context.Context, fn func(t *tables) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.store.mu.RLock()
	defer h.store.mu.RUnlock()
	return fn(h.store.data)
}

func (h handle) write(ctx context.Context, fn func(t *tables) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !h.inTx {
		h.store.txMu.Lock()
		defer h.store.txMu.Unlock()
	}
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	return fn(h.store.data)
}

func (h handle) now() time.Time {
	return h.store.now().UTC()
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(strings.TrimSpace(needle)))
}
