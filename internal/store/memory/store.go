// Package memory is an in-process Store used by tests and by DB_DRIVER=memory.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"shop-ledger/internal/apperr"
	"shop-ledger/internal/models"
	"shop-ledger/internal/store"
)

// compile-time interface check
var _ store.Store = (*Store)(nil)

type state struct {
	seq       int64
	order     map[string]int64
	cash      map[string]models.CashEntry
	items     map[string]models.InventoryItem
	customers map[string]models.Customer // ada göre
	entries   map[string]models.CustomerEntry
	misc      map[string]models.MiscEntry
	audit     []models.AuditLog
	users     map[string]models.User
}

func newState() *state {
	return &state{
		order:     make(map[string]int64),
		cash:      make(map[string]models.CashEntry),
		items:     make(map[string]models.InventoryItem),
		customers: make(map[string]models.Customer),
		entries:   make(map[string]models.CustomerEntry),
		misc:      make(map[string]models.MiscEntry),
		users:     make(map[string]models.User),
	}
}

func (st *state) clone() *state {
	c := &state{
		seq:       st.seq,
		order:     make(map[string]int64, len(st.order)),
		cash:      make(map[string]models.CashEntry, len(st.cash)),
		items:     make(map[string]models.InventoryItem, len(st.items)),
		customers: make(map[string]models.Customer, len(st.customers)),
		entries:   make(map[string]models.CustomerEntry, len(st.entries)),
		misc:      make(map[string]models.MiscEntry, len(st.misc)),
		audit:     append([]models.AuditLog(nil), st.audit...),
		users:     make(map[string]models.User, len(st.users)),
	}
	for k, v := range st.order {
		c.order[k] = v
	}
	for k, v := range st.cash {
		c.cash[k] = v
	}
	for k, v := range st.items {
		c.items[k] = v
	}
	for k, v := range st.customers {
		c.customers[k] = v
	}
	for k, v := range st.entries {
		c.entries[k] = v
	}
	for k, v := range st.misc {
		c.misc[k] = v
	}
	for k, v := range st.users {
		c.users[k] = v
	}
	return c
}

func (st *state) track(id string) {
	st.seq++
	st.order[id] = st.seq
}

// faults lets tests make a named operation fail once.
type faults struct {
	mu sync.Mutex
	m  map[string]error
}

func (f *faults) take(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	err, ok := f.m[op]
	if !ok {
		return nil
	}
	delete(f.m, op)
	return apperr.Storage(op, err)
}

type Store struct {
	txMu   *sync.Mutex // dışarıdan gelen yazmaları transaction'larla sıraya sokar
	mu     sync.Mutex
	data   *state
	inTx   bool
	faults *faults
	now    func() time.Time
}

func New() *Store {
	return &Store{
		txMu:   &sync.Mutex{},
		data:   newState(),
		faults: &faults{m: make(map[string]error)},
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// InjectFault makes the next call of the named Store method fail with err.
func (s *Store) InjectFault(op string, err error) {
	s.faults.mu.Lock()
	defer s.faults.mu.Unlock()
	s.faults.m[op] = err
}

func (s *Store) read(fn func(st *state)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.data)
}

func (s *Store) write(op string, fn func(st *state) error) error {
	if err := s.faults.take(op); err != nil {
		return err
	}
	if !s.inTx {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

func (s *Store) WithTx(ctx context.Context, fn store.TxFunc) error {
	if !s.inTx {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	snap := s.data.clone()
	s.mu.Unlock()

	child := &Store{txMu: s.txMu, data: snap, inTx: true, faults: s.faults, now: s.now}
	if err := fn(ctx, child); err != nil {
		return err
	}

	s.mu.Lock()
	s.data = child.data
	s.mu.Unlock()
	return nil
}

// ==================== Cash ====================

func (s *Store) ListCashEntries(_ context.Context) ([]models.CashEntry, error) {
	var out []models.CashEntry
	var order map[string]int64
	s.read(func(st *state) {
		out = make([]models.CashEntry, 0, len(st.cash))
		for _, e := range st.cash {
			out = append(out, e)
		}
		order = st.order
		sort.Slice(out, func(i, j int) bool {
			if !out[i].Date.Equal(out[j].Date) {
				return out[i].Date.Before(out[j].Date)
			}
			return order[out[i].ID] < order[out[j].ID]
		})
	})
	return out, nil
}

func (s *Store) GetCashEntry(_ context.Context, id string) (*models.CashEntry, error) {
	var (
		e  models.CashEntry
		ok bool
	)
	s.read(func(st *state) { e, ok = st.cash[id] })
	if !ok {
		return nil, apperr.NotFound("cash entry")
	}
	return &e, nil
}

func (s *Store) FindCashEntryBySource(_ context.Context, source models.CashSource, sourceID string) (*models.CashEntry, error) {
	var found *models.CashEntry
	s.read(func(st *state) {
		for _, e := range st.cash {
			if e.Source == source && e.SourceID == sourceID {
				e := e
				found = &e
				return
			}
		}
	})
	if found == nil {
		return nil, apperr.NotFound("cash entry")
	}
	return found, nil
}

func (s *Store) CreateCashEntry(_ context.Context, e *models.CashEntry) error {
	return s.write("CreateCashEntry", func(st *state) error {
		if _, exists := st.cash[e.ID]; exists {
			return apperr.Conflict("cash entry already exists")
		}
		now := s.now()
		e.CreatedAt, e.UpdatedAt = now, now
		if e.Source == "" {
			e.Source = models.CashSourceManual
		}
		st.cash[e.ID] = *e
		st.track(e.ID)
		return nil
	})
}

func (s *Store) UpdateCashEntry(_ context.Context, e *models.CashEntry) error {
	return s.write("UpdateCashEntry", func(st *state) error {
		old, ok := st.cash[e.ID]
		if !ok {
			return apperr.NotFound("cash entry")
		}
		e.CreatedAt = old.CreatedAt
		e.UpdatedAt = s.now()
		st.cash[e.ID] = *e
		return nil
	})
}

func (s *Store) DeleteCashEntry(_ context.Context, id string) error {
	return s.write("DeleteCashEntry", func(st *state) error {
		if _, ok := st.cash[id]; !ok {
			return apperr.NotFound("cash entry")
		}
		delete(st.cash, id)
		return nil
	})
}

// ==================== Inventory ====================

func (s *Store) ListInventoryItems(_ context.Context) ([]models.InventoryItem, error) {
	var out []models.InventoryItem
	s.read(func(st *state) {
		out = make([]models.InventoryItem, 0, len(st.items))
		for _, it := range st.items {
			out = append(out, it)
		}
		order := st.order
		sort.Slice(out, func(i, j int) bool { return order[out[i].ID] < order[out[j].ID] })
	})
	return out, nil
}

func (s *Store) GetInventoryItem(_ context.Context, id string) (*models.InventoryItem, error) {
	var (
		it models.InventoryItem
		ok bool
	)
	s.read(func(st *state) { it, ok = st.items[id] })
	if !ok {
		return nil, apperr.NotFound("inventory item")
	}
	return &it, nil
}

// firstByName returns the oldest item with that name, like a findOne would.
func firstByName(st *state, itemName string) (models.InventoryItem, bool) {
	var (
		best  models.InventoryItem
		found bool
	)
	for _, it := range st.items {
		if it.ItemName != itemName {
			continue
		}
		if !found || st.order[it.ID] < st.order[best.ID] {
			best, found = it, true
		}
	}
	return best, found
}

func (s *Store) GetInventoryItemByName(_ context.Context, itemName string) (*models.InventoryItem, error) {
	var (
		it models.InventoryItem
		ok bool
	)
	s.read(func(st *state) { it, ok = firstByName(st, itemName) })
	if !ok {
		return nil, apperr.NotFound("inventory item")
	}
	return &it, nil
}

func (s *Store) CreateInventoryItem(_ context.Context, it *models.InventoryItem) error {
	return s.write("CreateInventoryItem", func(st *state) error {
		if _, exists := st.items[it.ID]; exists {
			return apperr.Conflict("inventory item already exists")
		}
		now := s.now()
		it.CreatedAt, it.UpdatedAt = now, now
		st.items[it.ID] = *it
		st.track(it.ID)
		return nil
	})
}

func (s *Store) DeleteInventoryItem(_ context.Context, id string) error {
	return s.write("DeleteInventoryItem", func(st *state) error {
		if _, ok := st.items[id]; !ok {
			return apperr.NotFound("inventory item")
		}
		delete(st.items, id)
		return nil
	})
}

func (s *Store) AdjustInventory(_ context.Context, itemName string, valueSold, quantitySold decimal.Decimal) error {
	return s.write("AdjustInventory", func(st *state) error {
		it, ok := firstByName(st, itemName)
		if !ok {
			return apperr.NotFound("inventory item")
		}
		it.Value = it.Value.Sub(valueSold)
		it.UnitsSold = it.UnitsSold.Add(quantitySold)
		it.UpdatedAt = s.now()
		st.items[it.ID] = it
		return nil
	})
}

// ==================== Customers ====================

func (s *Store) ListCustomers(_ context.Context) ([]models.Customer, error) {
	var out []models.Customer
	s.read(func(st *state) {
		out = make([]models.Customer, 0, len(st.customers))
		for _, c := range st.customers {
			out = append(out, c)
		}
	})
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name) })
	return out, nil
}

func (s *Store) GetCustomer(_ context.Context, name string) (*models.Customer, error) {
	var (
		c  models.Customer
		ok bool
	)
	s.read(func(st *state) { c, ok = st.customers[name] })
	if !ok {
		return nil, apperr.NotFound("customer")
	}
	return &c, nil
}

func (s *Store) CreateCustomer(_ context.Context, c *models.Customer) error {
	return s.write("CreateCustomer", func(st *state) error {
		if _, exists := st.customers[c.Name]; exists {
			return apperr.Conflict("customer already exists")
		}
		c.CreatedAt = s.now()
		st.customers[c.Name] = *c
		st.track(c.ID)
		return nil
	})
}

func sortEntries(out []models.CustomerEntry, order map[string]int64) {
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return order[out[i].ID] < order[out[j].ID]
	})
}

func (s *Store) ListCustomerEntries(_ context.Context, customer string) ([]models.CustomerEntry, error) {
	var out []models.CustomerEntry
	s.read(func(st *state) {
		out = make([]models.CustomerEntry, 0)
		for _, e := range st.entries {
			if e.CustomerName == customer {
				out = append(out, e)
			}
		}
		sortEntries(out, st.order)
	})
	return out, nil
}

func (s *Store) ListEntriesByItem(_ context.Context, itemName string) ([]models.CustomerEntry, error) {
	var out []models.CustomerEntry
	s.read(func(st *state) {
		out = make([]models.CustomerEntry, 0)
		for _, e := range st.entries {
			if e.ItemName == itemName {
				out = append(out, e)
			}
		}
		sortEntries(out, st.order)
	})
	return out, nil
}

func (s *Store) GetCustomerEntry(_ context.Context, customer, id string) (*models.CustomerEntry, error) {
	var (
		e  models.CustomerEntry
		ok bool
	)
	s.read(func(st *state) { e, ok = st.entries[id] })
	if !ok || e.CustomerName != customer {
		return nil, apperr.NotFound("transaction")
	}
	return &e, nil
}

func (s *Store) CreateCustomerEntry(_ context.Context, e *models.CustomerEntry) error {
	return s.write("CreateCustomerEntry", func(st *state) error {
		if _, ok := st.customers[e.CustomerName]; !ok {
			return apperr.NotFound("customer")
		}
		if _, exists := st.entries[e.ID]; exists {
			return apperr.Conflict("transaction already exists")
		}
		e.CreatedAt = s.now()
		st.entries[e.ID] = *e
		st.track(e.ID)
		return nil
	})
}

func (s *Store) DeleteCustomerEntry(_ context.Context, customer, id string) error {
	return s.write("DeleteCustomerEntry", func(st *state) error {
		e, ok := st.entries[id]
		if !ok || e.CustomerName != customer {
			return apperr.NotFound("transaction")
		}
		delete(st.entries, id)
		return nil
	})
}

// ==================== Miscellaneous ====================

func (s *Store) ListMiscEntries(_ context.Context) ([]models.MiscEntry, error) {
	var out []models.MiscEntry
	s.read(func(st *state) {
		out = make([]models.MiscEntry, 0, len(st.misc))
		for _, e := range st.misc {
			out = append(out, e)
		}
		order := st.order
		sort.Slice(out, func(i, j int) bool {
			if !out[i].Date.Equal(out[j].Date) {
				return out[i].Date.Before(out[j].Date)
			}
			return order[out[i].ID] < order[out[j].ID]
		})
	})
	return out, nil
}

func (s *Store) GetMiscEntry(_ context.Context, id string) (*models.MiscEntry, error) {
	var (
		e  models.MiscEntry
		ok bool
	)
	s.read(func(st *state) { e, ok = st.misc[id] })
	if !ok {
		return nil, apperr.NotFound("miscellaneous entry")
	}
	return &e, nil
}

func (s *Store) CreateMiscEntry(_ context.Context, e *models.MiscEntry) error {
	return s.write("CreateMiscEntry", func(st *state) error {
		if _, exists := st.misc[e.ID]; exists {
			return apperr.Conflict("miscellaneous entry already exists")
		}
		now := s.now()
		e.CreatedAt, e.UpdatedAt = now, now
		st.misc[e.ID] = *e
		st.track(e.ID)
		return nil
	})
}

func (s *Store) UpdateMiscEntry(_ context.Context, e *models.MiscEntry) error {
	return s.write("UpdateMiscEntry", func(st *state) error {
		old, ok := st.misc[e.ID]
		if !ok {
			return apperr.NotFound("miscellaneous entry")
		}
		e.CreatedAt = old.CreatedAt
		e.UpdatedAt = s.now()
		st.misc[e.ID] = *e
		return nil
	})
}

func (s *Store) DeleteMiscEntry(_ context.Context, id string) error {
	return s.write("DeleteMiscEntry", func(st *state) error {
		if _, ok := st.misc[id]; !ok {
			return apperr.NotFound("miscellaneous entry")
		}
		delete(st.misc, id)
		return nil
	})
}

// ==================== Audit ====================

func (s *Store) CreateAuditLog(_ context.Context, l *models.AuditLog) error {
	return s.write("CreateAuditLog", func(st *state) error {
		l.CreatedAt = s.now()
		st.audit = append(st.audit, *l)
		return nil
	})
}

func (s *Store) ListAuditLogs(_ context.Context, f store.AuditFilter) ([]models.AuditLog, error) {
	var out []models.AuditLog
	s.read(func(st *state) {
		// en yeni en başta
		for i := len(st.audit) - 1; i >= 0; i-- {
			l := st.audit[i]
			if f.EntityType != "" && l.EntityType != f.EntityType {
				continue
			}
			if f.EntityID != "" && l.EntityID != f.EntityID {
				continue
			}
			if f.UserID != "" && l.UserID != f.UserID {
				continue
			}
			out = append(out, l)
			if f.Limit > 0 && len(out) == f.Limit {
				return
			}
		}
	})
	return out, nil
}

// ==================== Users ====================

func (s *Store) CreateUser(_ context.Context, u *models.User) error {
	return s.write("CreateUser", func(st *state) error {
		for _, existing := range st.users {
			if existing.Email == u.Email {
				return apperr.Conflict("email already registered")
			}
		}
		now := s.now()
		u.CreatedAt, u.UpdatedAt = now, now
		st.users[u.ID] = *u
		return nil
	})
}

func (s *Store) GetUser(_ context.Context, id string) (*models.User, error) {
	var (
		u  models.User
		ok bool
	)
	s.read(func(st *state) { u, ok = st.users[id] })
	if !ok {
		return nil, apperr.NotFound("user")
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	var found *models.User
	s.read(func(st *state) {
		for _, u := range st.users {
			if u.Email == email {
				u := u
				found = &u
				return
			}
		}
	})
	if found == nil {
		return nil, apperr.NotFound("user")
	}
	return found, nil
}

func (s *Store) CountUsersByRole(_ context.Context, role models.UserRole) (int64, error) {
	var n int64
	s.read(func(st *state) {
		for _, u := range st.users {
			if u.Role == role {
				n++
			}
		}
	})
	return n, nil
}

func (s *Store) Migrate(context.Context) error { return nil }

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }
