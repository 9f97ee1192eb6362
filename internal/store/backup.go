package store

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"io"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"golang.org/x/crypto/pbkdf2"

	"github.com/amflabs/stockpilot/internal/domain"
)

// Dump is the backup plaintext: exactly the six persisted collections.
type Dump struct {
	Products     []domain.Product     `json:"products"`
	Customers    []domain.Customer    `json:"customers"`
	Users        []domain.User        `json:"users"`
	Receipts     []domain.Receipt     `json:"receipts"`
	StoreInfo    domain.StoreInfo     `json:"storeInfo"`
	ActivityLogs []domain.ActivityLog `json:"activityLogs"`
}

const (
	backupSaltLen   = 16
	backupKeyLen    = 32
	backupKeyRounds = 10000
)

var ErrBadBackup = errors.New("backup cannot be decrypted or is malformed")

// Dump snapshots all six collections.
func (s *Store) Dump() (Dump, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return Dump{}, ErrNotLoaded
	}
	return Dump{
		Products:     append([]domain.Product(nil), s.products...),
		Customers:    append([]domain.Customer(nil), s.customers...),
		Users:        append([]domain.User(nil), s.users...),
		Receipts:     append([]domain.Receipt(nil), s.receipts...),
		StoreInfo:    s.storeInfo,
		ActivityLogs: append([]domain.ActivityLog(nil), s.activityLogs...),
	}, nil
}

// Restore replaces every collection with the dump contents in one backend
// transaction. Nothing is written if the flush fails.
func (s *Store) Restore(d Dump) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return ErrNotLoaded
	}

	if err := s.flush(map[string]interface{}{
		domain.CollectionProducts:     d.Products,
		domain.CollectionCustomers:    d.Customers,
		domain.CollectionUsers:        d.Users,
		domain.CollectionReceipts:     d.Receipts,
		domain.CollectionStoreInfo:    d.StoreInfo,
		domain.CollectionActivityLogs: d.ActivityLogs,
	}); err != nil {
		return err
	}
	s.products = d.Products
	s.customers = d.Customers
	s.users = d.Users
	s.receipts = d.Receipts
	s.storeInfo = d.StoreInfo
	s.activityLogs = d.ActivityLogs
	return nil
}

func backupKey(passphrase string, salt []byte) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, backupKeyRounds, backupKeyLen, sha256.New)
}

// EncryptDump serializes the dump and seals it with a passphrase-derived
// AES-256-GCM key. Output layout: base64(salt || nonce || ciphertext).
func EncryptDump(d Dump, passphrase string) ([]byte, error) {
	plaintext, err := json.Marshal(d)
	if err != nil {
		return nil, errors.Wrap(err, "encode backup")
	}
	return encryptRaw(plaintext, passphrase)
}

func encryptRaw(plaintext []byte, passphrase string) ([]byte, error) {
	salt := make([]byte, backupSaltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, errors.Wrap(err, "backup salt")
	}
	block, err := aes.NewCipher(backupKey(passphrase, salt))
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, errors.Wrap(err, "backup nonce")
	}

	sealed := gcm.Seal(nil, nonce, plaintext, nil)
	raw := append(append(salt, nonce...), sealed...)
	out := make([]byte, base64.StdEncoding.EncodedLen(len(raw)))
	base64.StdEncoding.Encode(out, raw)
	return out, nil
}

// DecryptDump opens an encrypted backup blob. The decrypted plaintext
// must contain all six collection keys or the whole restore is rejected.
func DecryptDump(blob []byte, passphrase string) (Dump, error) {
	raw := make([]byte, base64.StdEncoding.DecodedLen(len(blob)))
	n, err := base64.StdEncoding.Decode(raw, blob)
	if err != nil {
		return Dump{}, ErrBadBackup
	}
	raw = raw[:n]
	if len(raw) < backupSaltLen+12 {
		return Dump{}, ErrBadBackup
	}

	salt := raw[:backupSaltLen]
	block, err := aes.NewCipher(backupKey(passphrase, salt))
	if err != nil {
		return Dump{}, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return Dump{}, err
	}
	if len(raw) < backupSaltLen+gcm.NonceSize() {
		return Dump{}, ErrBadBackup
	}
	nonce := raw[backupSaltLen : backupSaltLen+gcm.NonceSize()]
	plaintext, err := gcm.Open(nil, nonce, raw[backupSaltLen+gcm.NonceSize():], nil)
	if err != nil {
		return Dump{}, ErrBadBackup
	}

	var keys map[string]jsoniter.RawMessage
	if err := json.Unmarshal(plaintext, &keys); err != nil {
		return Dump{}, ErrBadBackup
	}
	for _, key := range domain.Collections {
		if _, ok := keys[key]; !ok {
			return Dump{}, errors.Wrapf(ErrBadBackup, "missing collection %s", key)
		}
	}

	var d Dump
	if err := json.Unmarshal(plaintext, &d); err != nil {
		return Dump{}, ErrBadBackup
	}
	return d, nil
}
