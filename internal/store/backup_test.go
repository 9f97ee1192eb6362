package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amflabs/stockpilot/internal/domain"
)

func TestBackupRoundTrip(t *testing.T) {
	d := Dump{
		Products:  []domain.Product{{ID: "PROD1", Name: "Widget", Stock: 3}},
		Customers: []domain.Customer{{ID: "CUST1", Name: "Acme", Type: domain.CustomerRetail}},
		Users:     []domain.User{{ID: "USER1", Username: "supervisor"}},
		Receipts:  []domain.Receipt{},
		StoreInfo: domain.StoreInfo{Name: "Shop"},
	}

	blob, err := EncryptDump(d, "hunter2")
	require.NoError(t, err)

	got, err := DecryptDump(blob, "hunter2")
	require.NoError(t, err)
	assert.Equal(t, d.Products, got.Products)
	assert.Equal(t, d.Customers, got.Customers)
	assert.Equal(t, "Shop", got.StoreInfo.Name)
}

func TestBackupWrongPassphrase(t *testing.T) {
	blob, err := EncryptDump(Dump{}, "correct")
	require.NoError(t, err)

	_, err = DecryptDump(blob, "incorrect")
	assert.ErrorIs(t, err, ErrBadBackup)
}

func TestBackupGarbageBlob(t *testing.T) {
	_, err := DecryptDump([]byte("not a backup at all"), "pw")
	assert.ErrorIs(t, err, ErrBadBackup)
}

func TestRestoreRejectsMissingCollections(t *testing.T) {
	// A valid cipher whose plaintext lacks the receipts key must be
	// rejected wholesale.
	blob, err := encryptRaw([]byte(`{"products":[],"customers":[],"users":[],"storeInfo":{},"activityLogs":[]}`), "pw")
	require.NoError(t, err)
	_, err = DecryptDump(blob, "pw")
	assert.ErrorIs(t, err, ErrBadBackup)
}

func TestBackupRestoreScenario(t *testing.T) {
	// Source store: 2 products, 1 customer, 0 receipts.
	source := New(NewMemoryBackend(), testSalt)
	require.NoError(t, source.Load())
	require.NoError(t, source.Restore(Dump{
		Products: []domain.Product{
			{ID: "PROD1", Name: "Widget", Stock: 10},
			{ID: "PROD2", Name: "Gear", Stock: 4},
		},
		Customers:    []domain.Customer{{ID: "CUST1", Name: "Acme"}},
		Users:        []domain.User{{ID: "USER1", Username: "supervisor"}},
		Receipts:     []domain.Receipt{},
		StoreInfo:    domain.StoreInfo{Name: "Shop"},
		ActivityLogs: []domain.ActivityLog{},
	}))

	dump, err := source.Dump()
	require.NoError(t, err)
	blob, err := EncryptDump(dump, "pw")
	require.NoError(t, err)

	// Restore into a second, freshly seeded store.
	target := New(NewMemoryBackend(), testSalt)
	require.NoError(t, target.Load())
	restored, err := DecryptDump(blob, "pw")
	require.NoError(t, err)
	require.NoError(t, target.Restore(restored))

	products, _ := target.Products()
	assert.Len(t, products, 2)
	customers, _ := target.Customers()
	assert.Len(t, customers, 1)
	receipts, _ := target.Receipts()
	assert.Len(t, receipts, 0)

	// Restored state must survive a reload from the backend.
	reloaded := New(target.backend, testSalt)
	require.NoError(t, reloaded.Load())
	products, _ = reloaded.Products()
	assert.Len(t, products, 2)
}

func TestRestoreFailedWriteLeavesStateUntouched(t *testing.T) {
	backend := NewMemoryBackend()
	s := New(backend, testSalt)
	require.NoError(t, s.Load())
	before, _ := s.Products()

	backend.FailWrites = assert.AnError
	err := s.Restore(Dump{Products: []domain.Product{{ID: "PRODX"}}})
	require.Error(t, err)
	backend.FailWrites = nil

	after, _ := s.Products()
	assert.Equal(t, before, after)
}
