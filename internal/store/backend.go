package store

// Backend is the key-value persistence medium behind the store. PutAll
// must apply every entry in one transaction so multi-collection mutations
// (sales, restores) cannot be observed half-written.
type Backend interface {
	Get(key string) (value []byte, found bool, err error)
	Put(key string, value []byte) error
	PutAll(entries map[string][]byte) error
	Close() error
}
