package store

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amflabs/stockpilot/internal/domain"
)

const testSalt = "test-salt"

func newTestStore(t *testing.T) (*Store, *MemoryBackend) {
	t.Helper()
	backend := NewMemoryBackend()
	s := New(backend, testSalt)
	require.NoError(t, s.Load())
	return s, backend
}

// persistedProducts parses the products collection straight from the
// backend, bypassing the in-memory mirror.
func persistedProducts(t *testing.T, backend *MemoryBackend) []domain.Product {
	t.Helper()
	data, found, err := backend.Get(domain.CollectionProducts)
	require.NoError(t, err)
	require.True(t, found)
	var products []domain.Product
	require.NoError(t, json.Unmarshal(data, &products))
	return products
}

func TestLoadSeedsEmptyBackend(t *testing.T) {
	s, backend := newTestStore(t)

	for _, key := range domain.Collections {
		_, found, err := backend.Get(key)
		require.NoError(t, err)
		assert.True(t, found, "collection %s not seeded", key)
	}

	products, err := s.Products()
	require.NoError(t, err)
	assert.Len(t, products, 8)

	users, err := s.Users()
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, domain.RoleSupervisor, users[0].Role)

	info, err := s.StoreInfo()
	require.NoError(t, err)
	assert.Equal(t, "AMF Logistic", info.Name)
}

func TestLoadKeepsExistingData(t *testing.T) {
	backend := NewMemoryBackend()
	s := New(backend, testSalt)
	require.NoError(t, s.Load())

	_, err := s.AddProduct(domain.Actor{User: "supervisor"}, domain.Product{Name: "Ball Valve", Stock: 5})
	require.NoError(t, err)

	// A fresh store over the same backend must see the persisted state,
	// not the seeds.
	s2 := New(backend, testSalt)
	require.NoError(t, s2.Load())
	products, err := s2.Products()
	require.NoError(t, err)
	assert.Len(t, products, 9)
	assert.Equal(t, "Ball Valve", products[0].Name)
}

func TestReadsBeforeLoad(t *testing.T) {
	s := New(NewMemoryBackend(), testSalt)
	_, err := s.Products()
	assert.ErrorIs(t, err, ErrNotLoaded)
	_, err = s.StoreInfo()
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestLoadRejectsCorruptCollection(t *testing.T) {
	backend := NewMemoryBackend()
	require.NoError(t, backend.Put(domain.CollectionProducts, []byte("{not json")))
	s := New(backend, testSalt)
	assert.Error(t, s.Load())
}

func TestProductRoundTripAfterEachMutation(t *testing.T) {
	s, backend := newTestStore(t)
	actor := domain.Actor{User: "supervisor"}

	p, err := s.AddProduct(actor, domain.Product{Name: "Gasket", Category: "Seals", Stock: 30})
	require.NoError(t, err)
	mem, _ := s.Products()
	assert.Equal(t, mem, persistedProducts(t, backend))

	p.Stock = 12
	ok, err := s.EditProduct(actor, p)
	require.NoError(t, err)
	assert.True(t, ok)
	mem, _ = s.Products()
	assert.Equal(t, mem, persistedProducts(t, backend))

	require.NoError(t, s.DeleteProduct(actor, p.ID))
	mem, _ = s.Products()
	assert.Equal(t, mem, persistedProducts(t, backend))
}

func TestEditProductUnknownIDIsNoop(t *testing.T) {
	s, _ := newTestStore(t)
	before, _ := s.Products()
	logsBefore, _ := s.ActivityLogs()

	ok, err := s.EditProduct(domain.Actor{User: "employee"}, domain.Product{ID: "PROD999", Name: "Ghost"})
	require.NoError(t, err)
	assert.False(t, ok)

	after, _ := s.Products()
	assert.Equal(t, before, after)
	logsAfter, _ := s.ActivityLogs()
	assert.Equal(t, len(logsBefore), len(logsAfter))
}

func TestDeleteProductUnknownIDAuditsSentinel(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.DeleteProduct(domain.Actor{User: "employee"}, "PROD999"))
	logs, _ := s.ActivityLogs()
	require.NotEmpty(t, logs)
	assert.Equal(t, "Deleted product: Unknown Product", logs[0].Action)
}

func TestUpdateProductStockNoClamp(t *testing.T) {
	s, _ := newTestStore(t)
	p, err := s.AddProduct(domain.Actor{}, domain.Product{Name: "Flange", Stock: 10})
	require.NoError(t, err)
	logsBefore, _ := s.ActivityLogs()

	require.NoError(t, s.UpdateProductStock(p.ID, 3))
	got, _ := s.ProductByID(p.ID)
	assert.Equal(t, 7, got.Stock)

	require.NoError(t, s.UpdateProductStock(p.ID, 10))
	got, _ = s.ProductByID(p.ID)
	assert.Equal(t, -3, got.Stock)

	require.NoError(t, s.UpdateProductStock(p.ID, 0))
	got, _ = s.ProductByID(p.ID)
	assert.Equal(t, -3, got.Stock)

	require.NoError(t, s.UpdateProductStock(p.ID, -5))
	got, _ = s.ProductByID(p.ID)
	assert.Equal(t, 2, got.Stock)

	// stock movement alone is never audited
	logsAfter, _ := s.ActivityLogs()
	assert.Equal(t, len(logsBefore), len(logsAfter))
}

func TestChangeUserPassword(t *testing.T) {
	s, _ := newTestStore(t)
	u, ok := s.UserByUsername("employee")
	require.True(t, ok)

	changed, err := s.ChangeUserPassword(u.ID, "wrong", "next")
	require.NoError(t, err)
	assert.False(t, changed)
	again, _ := s.UserByID(u.ID)
	assert.Equal(t, u.Password, again.Password)

	changed, err = s.ChangeUserPassword(u.ID, "password", "next")
	require.NoError(t, err)
	assert.True(t, changed)
	_, ok = s.Authenticate("employee", "next")
	assert.True(t, ok)
	_, ok = s.Authenticate("employee", "password")
	assert.False(t, ok)

	changed, err = s.ChangeUserPassword("USER999", "password", "next")
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestAddReceiptPrependsNewestFirst(t *testing.T) {
	s, _ := newTestStore(t)
	actor := domain.Actor{User: "employee"}

	r1 := domain.Receipt{ID: "SALE1", Date: time.Now(), CustomerName: "Local Hardware"}
	r2 := domain.Receipt{ID: "SALE2", Date: time.Now(), CustomerName: "DIY Central"}
	require.NoError(t, s.AddReceipt(actor, r1))
	receipts, _ := s.Receipts()
	assert.Len(t, receipts, 1)

	require.NoError(t, s.AddReceipt(actor, r2))
	receipts, _ = s.Receipts()
	require.Len(t, receipts, 2)
	assert.Equal(t, "SALE2", receipts[0].ID)
	assert.Equal(t, "SALE1", receipts[1].ID)
}

func TestDeleteCustomerLeavesReceipts(t *testing.T) {
	s, _ := newTestStore(t)
	actor := domain.Actor{User: "employee"}

	c, err := s.AddCustomer(actor, domain.Customer{Name: "One-Off Buyer", Type: domain.CustomerRetail})
	require.NoError(t, err)
	require.NoError(t, s.AddReceipt(actor, domain.Receipt{
		ID: "SALE100", CustomerID: c.ID, CustomerName: c.Name, Total: 42,
	}))

	require.NoError(t, s.DeleteCustomer(actor, c.ID))
	_, found := s.CustomerByID(c.ID)
	assert.False(t, found)

	r, found := s.ReceiptByID("SALE100")
	require.True(t, found)
	assert.Equal(t, c.ID, r.CustomerID)
	assert.Equal(t, "One-Off Buyer", r.CustomerName)
}

func TestRecordSale(t *testing.T) {
	s, _ := newTestStore(t)
	actor := domain.Actor{User: "employee"}

	c, _ := s.CustomerByID("CUST002")
	historyBefore := c.PurchaseHistory
	p, _ := s.ProductByID("PROD001")
	stockBefore := p.Stock

	r, err := s.RecordSale(actor, domain.Receipt{
		CustomerID:   c.ID,
		CustomerName: c.Name,
		LineItems: []domain.LineItem{
			{ProductID: p.ID, ProductName: p.Name, Quantity: 4, Price: 25.99},
			{ProductID: "PROD008", ProductName: "Power Supply Unit", Quantity: 1, Price: 75.00},
		},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, r.ID)
	assert.InDelta(t, 4*25.99+75.00, r.Total, 1e-9)

	p, _ = s.ProductByID("PROD001")
	assert.Equal(t, stockBefore-4, p.Stock)
	c, _ = s.CustomerByID("CUST002")
	assert.InDelta(t, historyBefore+r.Total, c.PurchaseHistory, 1e-9)

	receipts, _ := s.Receipts()
	assert.Equal(t, r.ID, receipts[0].ID)
	logs, _ := s.ActivityLogs()
	assert.Contains(t, logs[0].Action, r.ID)
}

func TestRecordSaleAtomicOnWriteFailure(t *testing.T) {
	s, backend := newTestStore(t)

	p, _ := s.ProductByID("PROD001")
	stockBefore := p.Stock
	receiptsBefore, _ := s.Receipts()

	backend.FailWrites = errors.New("disk full")
	_, err := s.RecordSale(domain.Actor{User: "employee"}, domain.Receipt{
		CustomerID: "CUST001",
		LineItems:  []domain.LineItem{{ProductID: p.ID, Quantity: 2, Price: 10}},
	})
	require.Error(t, err)
	backend.FailWrites = nil

	// nothing committed: memory and backend are both untouched
	p, _ = s.ProductByID("PROD001")
	assert.Equal(t, stockBefore, p.Stock)
	receiptsAfter, _ := s.Receipts()
	assert.Equal(t, len(receiptsBefore), len(receiptsAfter))
	assert.Equal(t, stockBefore, persistedProducts(t, backend)[0].Stock)
}

func TestUpdateStoreInfo(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.UpdateStoreInfo(domain.Actor{User: "supervisor"}, domain.StoreInfo{
		Name: "New Name", Address: "New Address",
	}))
	info, _ := s.StoreInfo()
	assert.Equal(t, "New Name", info.Name)
	logs, _ := s.ActivityLogs()
	assert.Equal(t, "Updated store information.", logs[0].Action)
}

func TestAddUserRejectsDuplicateUsername(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.AddUser(domain.Actor{User: "supervisor"}, "employee", "secret", "")
	assert.Error(t, err)

	u, err := s.AddUser(domain.Actor{User: "supervisor"}, "cashier", "secret", "")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleEmployee, u.Role)
	_, ok := s.Authenticate("cashier", "secret")
	assert.True(t, ok)
}

func TestStockNotifier(t *testing.T) {
	s, _ := newTestStore(t)
	var notified []domain.Product
	s.SetStockNotifier(func(p domain.Product) { notified = append(notified, p) })

	require.NoError(t, s.UpdateProductStock("PROD005", 15))
	require.Len(t, notified, 1)
	assert.Equal(t, 5, notified[0].Stock)
}

func TestPruneActivityLogs(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.DeleteProduct(domain.Actor{User: "supervisor"}, "PROD001"))

	removed, err := s.PruneActivityLogs(time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, removed)

	removed, err = s.PruneActivityLogs(time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	logs, _ := s.ActivityLogs()
	assert.Empty(t, logs)
}
