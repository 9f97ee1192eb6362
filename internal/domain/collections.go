package domain

// Top-level keys in the persistence medium. Each holds one JSON-serialized
// collection or singleton.
const (
	CollectionProducts     = "products"
	CollectionCustomers    = "customers"
	CollectionUsers        = "users"
	CollectionReceipts     = "receipts"
	CollectionStoreInfo    = "storeInfo"
	CollectionActivityLogs = "activityLogs"
)

var Collections = []string{
	CollectionProducts,
	CollectionCustomers,
	CollectionUsers,
	CollectionReceipts,
	CollectionStoreInfo,
	CollectionActivityLogs,
}
