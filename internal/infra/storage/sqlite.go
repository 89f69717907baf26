package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"launchpad_go/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Storage persists the token registry and trade history. It also serves as
// the curve-config store: curve parameters are written once at launch and
// loaded read-only afterwards.
type Storage struct {
	db *gorm.DB
}

// NewStorage creates a new SQLite storage instance. An empty path resolves
// to the OS user config directory.
func NewStorage(dbPath string) (*Storage, error) {
	if dbPath == "" {
		var err error
		dbPath, err = getDBPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve DB path: %w", err)
		}
	}

	// Ensure directory exists
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	// Connect to SQLite (Pure Go)
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto Migration
	if err := db.AutoMigrate(&domain.TokenInfo{}, &domain.TradeRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Storage{db: db}, nil
}

// getDBPath resolves the default database file path based on OS
func getDBPath() (string, error) {
	var configDir string
	var err error

	if runtime.GOOS == "windows" {
		configDir = os.Getenv("LOCALAPPDATA")
		if configDir == "" {
			configDir, err = os.UserConfigDir()
		}
	} else {
		configDir, err = os.UserConfigDir()
	}

	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, "Launchpad", "data", "launchpad.db"), nil
}

// ======================================================================================
// Token Operations
// ======================================================================================

// CreateToken inserts a new token row. The curve columns are immutable after
// this point.
func (s *Storage) CreateToken(token *domain.TokenInfo) error {
	return s.db.Create(token).Error
}

// GetToken retrieves a token by curve instance ID
func (s *Storage) GetToken(id string) (*domain.TokenInfo, error) {
	var token domain.TokenInfo
	err := s.db.First(&token, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // Not found is not an error
	}
	return &token, err
}

// GetAllTokens retrieves all launched tokens
func (s *Storage) GetAllTokens() ([]domain.TokenInfo, error) {
	var tokens []domain.TokenInfo
	err := s.db.Find(&tokens).Error
	return tokens, err
}

// UpdateLogoPath records the local logo path for a token. The curve columns
// stay untouched.
func (s *Storage) UpdateLogoPath(id, logoPath string) error {
	return s.db.Model(&domain.TokenInfo{}).Where("id = ?", id).
		Update("logo_path", logoPath).Error
}

// Load implements the curve-config store contract: it reconstructs and
// validates the immutable curve configuration for a curve instance.
func (s *Storage) Load(curveID string) (domain.CurveConfig, error) {
	token, err := s.GetToken(curveID)
	if err != nil {
		return domain.CurveConfig{}, err
	}
	if token == nil {
		return domain.CurveConfig{}, domain.Errf("config store", domain.ErrNotFound, "curve %s", curveID)
	}

	cfg := token.CurveConfig()
	if err := cfg.Validate(); err != nil {
		return domain.CurveConfig{}, err
	}
	return cfg, nil
}

// ======================================================================================
// Trade History Operations
// ======================================================================================

// SaveTrade appends a trade outcome to the history.
func (s *Storage) SaveTrade(record *domain.TradeRecord) error {
	return s.db.Create(record).Error
}

// GetTradesByToken returns the trade history for one token, newest first.
func (s *Storage) GetTradesByToken(tokenID string, limit int) ([]domain.TradeRecord, error) {
	var records []domain.TradeRecord
	q := s.db.Where("token_id = ?", tokenID).Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&records).Error
	return records, err
}
