package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/amflabs/stockpilot/internal/domain"
	"github.com/amflabs/stockpilot/pkg/common"
)

// Domain mutation API. Every operation persists the touched collections
// together with its activity entry in one backend transaction, then
// commits to memory. Edits and deletes of unknown ids are explicit no-ops:
// edits report ok=false, deletes audit an "Unknown X" sentinel name.

func (s *Store) AddProduct(actor domain.Actor, p domain.Product) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return domain.Product{}, ErrNotLoaded
	}

	p.ID = common.NewID("PROD")
	products := append([]domain.Product{p}, s.products...)
	entry := s.newActivity(actor, fmt.Sprintf("Added new product: %s", p.Name))
	logs := prependActivity(s.activityLogs, entry)

	if err := s.flush(map[string]interface{}{
		domain.CollectionProducts:     products,
		domain.CollectionActivityLogs: logs,
	}); err != nil {
		return domain.Product{}, err
	}
	s.products, s.activityLogs = products, logs
	return p, nil
}

func (s *Store) EditProduct(actor domain.Actor, p domain.Product) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return false, ErrNotLoaded
	}

	products := append([]domain.Product(nil), s.products...)
	found := false
	for i := range products {
		if products[i].ID == p.ID {
			products[i] = p
			found = true
			break
		}
	}
	if !found {
		return false, nil
	}
	entry := s.newActivity(actor, fmt.Sprintf("Updated product: %s", p.Name))
	logs := prependActivity(s.activityLogs, entry)

	if err := s.flush(map[string]interface{}{
		domain.CollectionProducts:     products,
		domain.CollectionActivityLogs: logs,
	}); err != nil {
		return false, err
	}
	s.products, s.activityLogs = products, logs
	return true, nil
}

func (s *Store) DeleteProduct(actor domain.Actor, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return ErrNotLoaded
	}

	name := "Unknown Product"
	products := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if p.ID == productID {
			name = p.Name
			continue
		}
		products = append(products, p)
	}
	entry := s.newActivity(actor, fmt.Sprintf("Deleted product: %s", name))
	logs := prependActivity(s.activityLogs, entry)

	if err := s.flush(map[string]interface{}{
		domain.CollectionProducts:     products,
		domain.CollectionActivityLogs: logs,
	}); err != nil {
		return err
	}
	s.products, s.activityLogs = products, logs
	return nil
}

func (s *Store) AddCustomer(actor domain.Actor, c domain.Customer) (domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return domain.Customer{}, ErrNotLoaded
	}

	c.ID = common.NewID("CUST")
	c.PurchaseHistory = 0
	customers := append([]domain.Customer{c}, s.customers...)
	entry := s.newActivity(actor, fmt.Sprintf("Added new customer: %s", c.Name))
	logs := prependActivity(s.activityLogs, entry)

	if err := s.flush(map[string]interface{}{
		domain.CollectionCustomers:    customers,
		domain.CollectionActivityLogs: logs,
	}); err != nil {
		return domain.Customer{}, err
	}
	s.customers, s.activityLogs = customers, logs
	return c, nil
}

func (s *Store) EditCustomer(actor domain.Actor, c domain.Customer) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return false, ErrNotLoaded
	}

	customers := append([]domain.Customer(nil), s.customers...)
	found := false
	for i := range customers {
		if customers[i].ID == c.ID {
			customers[i] = c
			found = true
			break
		}
	}
	if !found {
		return false, nil
	}
	entry := s.newActivity(actor, fmt.Sprintf("Updated customer: %s", c.Name))
	logs := prependActivity(s.activityLogs, entry)

	if err := s.flush(map[string]interface{}{
		domain.CollectionCustomers:    customers,
		domain.CollectionActivityLogs: logs,
	}); err != nil {
		return false, err
	}
	s.customers, s.activityLogs = customers, logs
	return true, nil
}

func (s *Store) DeleteCustomer(actor domain.Actor, customerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return ErrNotLoaded
	}

	name := "Unknown Customer"
	customers := make([]domain.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		if c.ID == customerID {
			name = c.Name
			continue
		}
		customers = append(customers, c)
	}
	entry := s.newActivity(actor, fmt.Sprintf("Deleted customer: %s", name))
	logs := prependActivity(s.activityLogs, entry)

	if err := s.flush(map[string]interface{}{
		domain.CollectionCustomers:    customers,
		domain.CollectionActivityLogs: logs,
	}); err != nil {
		return err
	}
	s.customers, s.activityLogs = customers, logs
	return nil
}

// AddUser creates an account with the given plaintext password. Role
// defaults to employee, avatar to the default image.
func (s *Store) AddUser(actor domain.Actor, username, password, role string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return domain.User{}, ErrNotLoaded
	}

	username = strings.TrimSpace(username)
	for _, u := range s.users {
		if u.Username == username {
			return domain.User{}, errors.Errorf("username %q already exists", username)
		}
	}

	u := domain.User{
		ID:       common.NewID("USER"),
		Username: username,
		Password: s.HashPassword(password),
		Role:     common.IfEmptyStr(role, domain.RoleEmployee),
		Avatar:   DefaultAvatar,
	}
	users := append(append([]domain.User(nil), s.users...), u)
	entry := s.newActivity(actor, fmt.Sprintf("Added new employee: %s", u.Username))
	logs := prependActivity(s.activityLogs, entry)

	if err := s.flush(map[string]interface{}{
		domain.CollectionUsers:        users,
		domain.CollectionActivityLogs: logs,
	}); err != nil {
		return domain.User{}, err
	}
	s.users, s.activityLogs = users, logs
	return u, nil
}

func (s *Store) DeleteUser(actor domain.Actor, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return ErrNotLoaded
	}

	username := "Unknown User"
	users := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		if u.ID == userID {
			username = u.Username
			continue
		}
		users = append(users, u)
	}
	entry := s.newActivity(actor, fmt.Sprintf("Deleted employee: %s", username))
	logs := prependActivity(s.activityLogs, entry)

	if err := s.flush(map[string]interface{}{
		domain.CollectionUsers:        users,
		domain.CollectionActivityLogs: logs,
	}); err != nil {
		return err
	}
	s.users, s.activityLogs = users, logs
	return nil
}

// ChangeUserPassword verifies the old password and replaces it. Any
// failure (unknown user, wrong password) reports false, leaves state
// untouched and appends no audit entry.
func (s *Store) ChangeUserPassword(userID, oldPassword, newPassword string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return false, ErrNotLoaded
	}

	users := append([]domain.User(nil), s.users...)
	idx := -1
	for i := range users {
		if users[i].ID == userID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}
	if users[idx].Password != s.HashPassword(oldPassword) {
		return false, nil
	}
	users[idx].Password = s.HashPassword(newPassword)

	entry := s.newActivity(domain.Actor{User: users[idx].Username, Avatar: users[idx].Avatar},
		fmt.Sprintf("Changed password for %s.", users[idx].Username))
	logs := prependActivity(s.activityLogs, entry)

	if err := s.flush(map[string]interface{}{
		domain.CollectionUsers:        users,
		domain.CollectionActivityLogs: logs,
	}); err != nil {
		return false, err
	}
	s.users, s.activityLogs = users, logs
	return true, nil
}

func (s *Store) UpdateUserAvatar(actor domain.Actor, userID, avatar string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return false, ErrNotLoaded
	}

	users := append([]domain.User(nil), s.users...)
	idx := -1
	for i := range users {
		if users[i].ID == userID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}
	users[idx].Avatar = avatar

	entry := s.newActivity(actor, fmt.Sprintf("Updated avatar for %s.", users[idx].Username))
	logs := prependActivity(s.activityLogs, entry)

	if err := s.flush(map[string]interface{}{
		domain.CollectionUsers:        users,
		domain.CollectionActivityLogs: logs,
	}); err != nil {
		return false, err
	}
	s.users, s.activityLogs = users, logs
	return true, nil
}

// UpdateProductStock decrements stock by quantitySold without clamping;
// stock may go negative. Not audited: stock movement is audited through
// the receipt that caused it.
func (s *Store) UpdateProductStock(productID string, quantitySold int) error {
	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return ErrNotLoaded
	}

	products := append([]domain.Product(nil), s.products...)
	var changed *domain.Product
	for i := range products {
		if products[i].ID == productID {
			products[i].Stock -= quantitySold
			changed = &products[i]
			break
		}
	}
	if changed == nil {
		s.mu.Unlock()
		return nil
	}
	if err := s.flush(map[string]interface{}{domain.CollectionProducts: products}); err != nil {
		s.mu.Unlock()
		return err
	}
	s.products = products
	notify, product := s.notify, *changed
	s.mu.Unlock()

	if notify != nil {
		notify(product)
	}
	return nil
}

// UpdateCustomerPurchaseHistory adds amount to the accumulator. Not
// audited for the same reason as UpdateProductStock.
func (s *Store) UpdateCustomerPurchaseHistory(customerID string, amount float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return ErrNotLoaded
	}

	customers := append([]domain.Customer(nil), s.customers...)
	found := false
	for i := range customers {
		if customers[i].ID == customerID {
			customers[i].PurchaseHistory += amount
			found = true
			break
		}
	}
	if !found {
		return nil
	}
	if err := s.flush(map[string]interface{}{domain.CollectionCustomers: customers}); err != nil {
		return err
	}
	s.customers = customers
	return nil
}

// AddReceipt prepends the receipt (newest first) and audits it. The
// receipt is stored as given; use RecordSale to also move stock and
// purchase history.
func (s *Store) AddReceipt(actor domain.Actor, r domain.Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return ErrNotLoaded
	}

	receipts := append([]domain.Receipt{r}, s.receipts...)
	entry := s.newActivity(actor, fmt.Sprintf("Generated receipt #%s for %s.", r.ID, r.CustomerName))
	logs := prependActivity(s.activityLogs, entry)

	if err := s.flush(map[string]interface{}{
		domain.CollectionReceipts:     receipts,
		domain.CollectionActivityLogs: logs,
	}); err != nil {
		return err
	}
	s.receipts, s.activityLogs = receipts, logs
	return nil
}

// RecordSale applies a complete sale as one unit: per-line stock
// decrements (unclamped), customer purchase-history increment, receipt
// prepend and the audit entry are flushed in a single backend
// transaction, so a partially applied sale can never be observed. The
// receipt id, date and total are assigned here.
func (s *Store) RecordSale(actor domain.Actor, r domain.Receipt) (domain.Receipt, error) {
	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return domain.Receipt{}, ErrNotLoaded
	}

	r.ID = common.NewID("SALE")
	if r.Date.IsZero() {
		r.Date = time.Now()
	}
	r.Total = 0
	for _, li := range r.LineItems {
		r.Total += li.Extension()
	}

	products := append([]domain.Product(nil), s.products...)
	var lowCandidates []domain.Product
	for _, li := range r.LineItems {
		for i := range products {
			if products[i].ID == li.ProductID {
				products[i].Stock -= li.Quantity
				lowCandidates = append(lowCandidates, products[i])
				break
			}
		}
	}

	customers := append([]domain.Customer(nil), s.customers...)
	for i := range customers {
		if customers[i].ID == r.CustomerID {
			customers[i].PurchaseHistory += r.Total
			break
		}
	}

	receipts := append([]domain.Receipt{r}, s.receipts...)
	entry := s.newActivity(actor, fmt.Sprintf("Generated receipt #%s for %s.", r.ID, r.CustomerName))
	logs := prependActivity(s.activityLogs, entry)

	if err := s.flush(map[string]interface{}{
		domain.CollectionProducts:     products,
		domain.CollectionCustomers:    customers,
		domain.CollectionReceipts:     receipts,
		domain.CollectionActivityLogs: logs,
	}); err != nil {
		s.mu.Unlock()
		return domain.Receipt{}, err
	}
	s.products, s.customers, s.receipts, s.activityLogs = products, customers, receipts, logs
	notify := s.notify
	s.mu.Unlock()

	if notify != nil {
		for _, p := range lowCandidates {
			notify(p)
		}
	}
	return r, nil
}

func (s *Store) UpdateStoreInfo(actor domain.Actor, info domain.StoreInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return ErrNotLoaded
	}

	entry := s.newActivity(actor, "Updated store information.")
	logs := prependActivity(s.activityLogs, entry)

	if err := s.flush(map[string]interface{}{
		domain.CollectionStoreInfo:    info,
		domain.CollectionActivityLogs: logs,
	}); err != nil {
		return err
	}
	s.storeInfo, s.activityLogs = info, logs
	return nil
}

// PruneActivityLogs drops audit entries older than the retention window
// and reports how many were removed.
func (s *Store) PruneActivityLogs(olderThan time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return 0, ErrNotLoaded
	}

	logs := make([]domain.ActivityLog, 0, len(s.activityLogs))
	for _, l := range s.activityLogs {
		if l.Timestamp.After(olderThan) {
			logs = append(logs, l)
		}
	}
	removed := len(s.activityLogs) - len(logs)
	if removed == 0 {
		return 0, nil
	}
	if err := s.flush(map[string]interface{}{domain.CollectionActivityLogs: logs}); err != nil {
		return 0, err
	}
	s.activityLogs = logs
	return removed, nil
}
