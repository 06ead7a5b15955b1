package securestore

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/chacha20poly1305"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/GhadiSaab/savedfeast-client/internal/logging"
)

type entry struct {
	Key   string `gorm:"primaryKey"`
	Value string `gorm:"not null"`
}

func (entry) TableName() string {
	return "entries"
}

// SQLiteStore persists entries in a local sqlite file. Values are sealed
// with chacha20poly1305 when a secret is configured, so a copied database
// file does not leak the bearer token.
type SQLiteStore struct {
	db  *gorm.DB
	key []byte
}

func NewSQLiteStore(path, secret string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err := db.AutoMigrate(&entry{}); err != nil {
		return nil, fmt.Errorf("migrate store: %w", err)
	}

	s := &SQLiteStore{db: db}
	if secret != "" {
		sum := sha256.Sum256([]byte(secret))
		s.key = sum[:]
	}
	return s, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) string {
	var e entry
	if err := s.db.WithContext(ctx).Where("key = ?", key).First(&e).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logging.FromContext(ctx).Warn("securestore get failed", "key", key, "error", err)
		}
		return ""
	}

	value, err := s.open(e.Value)
	if err != nil {
		logging.FromContext(ctx).Warn("securestore unseal failed", "key", key, "error", err)
		return ""
	}
	return value
}

func (s *SQLiteStore) Set(ctx context.Context, key, value string) {
	sealed, err := s.seal(value)
	if err != nil {
		logging.FromContext(ctx).Warn("securestore seal failed", "key", key, "error", err)
		return
	}

	e := entry{Key: key, Value: sealed}
	err = s.db.WithContext(ctx).Save(&e).Error
	if err != nil {
		logging.FromContext(ctx).Warn("securestore set failed", "key", key, "error", err)
	}
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) {
	if err := s.db.WithContext(ctx).Where("key = ?", key).Delete(&entry{}).Error; err != nil {
		logging.FromContext(ctx).Warn("securestore delete failed", "key", key, "error", err)
	}
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *SQLiteStore) seal(value string) (string, error) {
	if s.key == nil {
		return value, nil
	}

	aead, err := chacha20poly1305.New(s.key)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := aead.Seal(nonce, nonce, []byte(value), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (s *SQLiteStore) open(stored string) (string, error) {
	if s.key == nil {
		return stored, nil
	}

	raw, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return "", err
	}
	aead, err := chacha20poly1305.New(s.key)
	if err != nil {
		return "", err
	}
	if len(raw) < aead.NonceSize() {
		return "", errors.New("sealed value too short")
	}
	nonce, sealed := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}
