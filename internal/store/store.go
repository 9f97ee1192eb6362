package store

import (
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/amflabs/stockpilot/internal/domain"
	"github.com/amflabs/stockpilot/pkg/common"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrNotLoaded is returned when a collection is read before Load completed.
var ErrNotLoaded = errors.New("store not loaded")

// StockNotifier is invoked after a product's stock changed through a sale
// or a stock update. Runs with the store lock released.
type StockNotifier func(product domain.Product)

// Store mirrors the six persisted collections in memory and keeps both
// sides synchronized on every mutation: the backend write happens first,
// memory commits only after it succeeds.
type Store struct {
	backend Backend
	salt    string
	notify  StockNotifier

	mu           sync.RWMutex
	loaded       bool
	products     []domain.Product
	customers    []domain.Customer
	users        []domain.User
	receipts     []domain.Receipt
	storeInfo    domain.StoreInfo
	activityLogs []domain.ActivityLog
}

func New(backend Backend, salt string) *Store {
	return &Store{backend: backend, salt: salt}
}

// SetStockNotifier installs the low-stock callback. Must be set before the
// store is shared with handlers.
func (s *Store) SetStockNotifier(fn StockNotifier) {
	s.notify = fn
}

// Load mirrors every collection from the backend, seeding missing keys
// with defaults. Reads fail with ErrNotLoaded until it returns nil.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seeds := make(map[string][]byte)
	load := func(key string, target interface{}, seed interface{}) error {
		data, found, err := s.backend.Get(key)
		if err != nil {
			return err
		}
		if !found {
			data, err = json.Marshal(seed)
			if err != nil {
				return errors.Wrapf(err, "seed %s", key)
			}
			seeds[key] = data
		}
		if err := json.Unmarshal(data, target); err != nil {
			return errors.Wrapf(err, "parse collection %s", key)
		}
		return nil
	}

	if err := load(domain.CollectionProducts, &s.products, seedProducts()); err != nil {
		return err
	}
	if err := load(domain.CollectionCustomers, &s.customers, seedCustomers()); err != nil {
		return err
	}
	if err := load(domain.CollectionUsers, &s.users, seedUsers(s.salt)); err != nil {
		return err
	}
	if err := load(domain.CollectionReceipts, &s.receipts, []domain.Receipt{}); err != nil {
		return err
	}
	if err := load(domain.CollectionStoreInfo, &s.storeInfo, seedStoreInfo()); err != nil {
		return err
	}
	if err := load(domain.CollectionActivityLogs, &s.activityLogs, []domain.ActivityLog{}); err != nil {
		return err
	}

	if len(seeds) > 0 {
		if err := s.backend.PutAll(seeds); err != nil {
			return errors.Wrap(err, "seed collections")
		}
	}
	s.loaded = true
	return nil
}

// HashPassword returns the salted digest stored in User.Password.
func (s *Store) HashPassword(plain string) string {
	return common.Sha256HashWithSalt(plain, s.salt)
}

// flush marshals the given collections and writes them in one backend
// transaction. Callers hold s.mu and commit memory only on nil return.
func (s *Store) flush(entries map[string]interface{}) error {
	encoded := make(map[string][]byte, len(entries))
	for key, value := range entries {
		data, err := json.Marshal(value)
		if err != nil {
			return errors.Wrapf(err, "encode collection %s", key)
		}
		encoded[key] = data
	}
	return s.backend.PutAll(encoded)
}

func (s *Store) newActivity(actor domain.Actor, action string) domain.ActivityLog {
	return domain.ActivityLog{
		ID:        common.NewID("LOG"),
		User:      common.IfEmptyStr(actor.User, "System"),
		Avatar:    common.IfEmptyStr(actor.Avatar, DefaultAvatar),
		Action:    action,
		Timestamp: time.Now(),
	}
}

func prependActivity(logs []domain.ActivityLog, entry domain.ActivityLog) []domain.ActivityLog {
	return append([]domain.ActivityLog{entry}, logs...)
}

// ---- reads ----

func (s *Store) Products() ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return nil, ErrNotLoaded
	}
	return append([]domain.Product(nil), s.products...), nil
}

func (s *Store) Customers() ([]domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return nil, ErrNotLoaded
	}
	return append([]domain.Customer(nil), s.customers...), nil
}

func (s *Store) Users() ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return nil, ErrNotLoaded
	}
	return append([]domain.User(nil), s.users...), nil
}

func (s *Store) Receipts() ([]domain.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return nil, ErrNotLoaded
	}
	return append([]domain.Receipt(nil), s.receipts...), nil
}

func (s *Store) StoreInfo() (domain.StoreInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return domain.StoreInfo{}, ErrNotLoaded
	}
	return s.storeInfo, nil
}

func (s *Store) ActivityLogs() ([]domain.ActivityLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return nil, ErrNotLoaded
	}
	return append([]domain.ActivityLog(nil), s.activityLogs...), nil
}

func (s *Store) ProductByID(id string) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

func (s *Store) CustomerByID(id string) (domain.Customer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.customers {
		if c.ID == id {
			return c, true
		}
	}
	return domain.Customer{}, false
}

func (s *Store) UserByID(id string) (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, true
		}
	}
	return domain.User{}, false
}

func (s *Store) UserByUsername(username string) (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, true
		}
	}
	return domain.User{}, false
}

func (s *Store) ReceiptByID(id string) (domain.Receipt, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.receipts {
		if r.ID == id {
			return r, true
		}
	}
	return domain.Receipt{}, false
}

// Authenticate checks a username/plaintext password pair against the
// stored digest.
func (s *Store) Authenticate(username, password string) (domain.User, bool) {
	u, ok := s.UserByUsername(username)
	if !ok {
		return domain.User{}, false
	}
	if u.Password != s.HashPassword(password) {
		return domain.User{}, false
	}
	return u, true
}
