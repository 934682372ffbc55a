// Package securestore persists small secrets (the session token and the
// serialized user) in an encrypted file.
package securestore

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"
)

const (
	saltSize  = 16
	nonceSize = 24
	keySize   = 32

	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

var (
	ErrNotFound = errors.New("securestore: key not found")
	ErrDecrypt  = errors.New("securestore: cannot decrypt store")
)

// KV is an opaque string key/value store.
type KV interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// FileStore keeps all entries in one file sealed with NaCl secretbox. The key
// is derived from a passphrase and a random per-write salt with scrypt.
// File layout: salt | nonce | sealed JSON map.
type FileStore struct {
	path       string
	passphrase []byte

	mu sync.Mutex
}

// NewFileStore creates a store backed by the file at path. The file is created
// on the first write.
func NewFileStore(path, passphrase string) (*FileStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("securestore: path is required")
	}
	if passphrase == "" {
		return nil, fmt.Errorf("securestore: passphrase is required")
	}
	return &FileStore{path: path, passphrase: []byte(passphrase)}, nil
}

// Get returns the value stored under key, or ErrNotFound.
func (s *FileStore) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return "", err
	}
	v, ok := entries[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set stores value under key.
func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}
	entries[key] = value
	return s.save(entries)
}

// Delete removes key. Deleting a missing key is not an error.
func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := entries[key]; !ok {
		return nil
	}
	delete(entries, key)
	return s.save(entries)
}

func (s *FileStore) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("securestore: read %s: %w", s.path, err)
	}
	if len(data) < saltSize+nonceSize+secretbox.Overhead {
		return nil, ErrDecrypt
	}

	salt := data[:saltSize]
	var nonce [nonceSize]byte
	copy(nonce[:], data[saltSize:saltSize+nonceSize])

	key, err := s.deriveKey(salt)
	if err != nil {
		return nil, err
	}
	plain, ok := secretbox.Open(nil, data[saltSize+nonceSize:], &nonce, key)
	if !ok {
		return nil, ErrDecrypt
	}

	entries := make(map[string]string)
	if err := json.Unmarshal(plain, &entries); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecrypt, err)
	}
	return entries, nil
}

func (s *FileStore) save(entries map[string]string) error {
	plain, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("securestore: encode: %w", err)
	}

	buf := make([]byte, saltSize+nonceSize, saltSize+nonceSize+len(plain)+secretbox.Overhead)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return fmt.Errorf("securestore: random: %w", err)
	}
	var nonce [nonceSize]byte
	copy(nonce[:], buf[saltSize:])

	key, err := s.deriveKey(buf[:saltSize])
	if err != nil {
		return err
	}
	sealed := secretbox.Seal(buf, plain, &nonce, key)

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("securestore: create dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".securestore-*")
	if err != nil {
		return fmt.Errorf("securestore: create temp: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(sealed); err != nil {
		tmp.Close()
		return fmt.Errorf("securestore: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("securestore: close: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return fmt.Errorf("securestore: chmod: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("securestore: replace %s: %w", s.path, err)
	}
	return nil
}

func (s *FileStore) deriveKey(salt []byte) (*[keySize]byte, error) {
	k, err := scrypt.Key(s.passphrase, salt, scryptN, scryptR, scryptP, keySize)
	if err != nil {
		return nil, fmt.Errorf("securestore: derive key: %w", err)
	}
	var key [keySize]byte
	copy(key[:], k)
	return &key, nil
}

// MemoryStore is a KV that lives only as long as the process.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]string)}
}

func (m *MemoryStore) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}
