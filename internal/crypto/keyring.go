package crypto

import (
	"errors"
	"fmt"
	"os"

	"github.com/zalando/go-keyring"
)

// Keyring provides secure key storage abstraction
type Keyring interface {
	GetKey() (string, error)
	SetKey(password string) error
	DeleteKey() error
	IsAvailable() bool
}

const (
	ServiceName = "invoicer"
	KeyName     = "db-encryption-key"

	// KeyEnv supplies the database key directly, bypassing the system keyring
	KeyEnv = "INVOICER_DB_KEY"
)

// NewKeyring returns the env keyring when INVOICER_DB_KEY is set and the
// system keyring otherwise
func NewKeyring() Keyring {
	if os.Getenv(KeyEnv) != "" {
		return &envKeyring{}
	}
	return &systemKeyring{}
}

type systemKeyring struct{}

// GetKey retrieves the encryption key from the system keyring
func (k *systemKeyring) GetKey() (string, error) {
	key, err := keyring.Get(ServiceName, KeyName)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("encryption key not found in keyring: %w", err)
		}
		return "", fmt.Errorf("failed to retrieve key from keyring: %w", err)
	}

	if key == "" {
		return "", errors.New("encryption key is empty")
	}

	return key, nil
}

// SetKey stores the encryption key in the system keyring
func (k *systemKeyring) SetKey(password string) error {
	if password == "" {
		return errors.New("password cannot be empty")
	}

	if err := keyring.Set(ServiceName, KeyName, password); err != nil {
		return fmt.Errorf("failed to store key in keyring: %w", err)
	}

	return nil
}

// DeleteKey removes the encryption key from the system keyring
func (k *systemKeyring) DeleteKey() error {
	err := keyring.Delete(ServiceName, KeyName)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("encryption key not found in keyring: %w", err)
		}
		return fmt.Errorf("failed to delete key from keyring: %w", err)
	}

	return nil
}

// IsAvailable checks if the system keyring is accessible
func (k *systemKeyring) IsAvailable() bool {
	// Probe with a throwaway entry that is removed straight away
	testKey := "__invoicer_availability_test__"
	if err := keyring.Set(ServiceName, testKey, "test"); err != nil {
		return false
	}

	_ = keyring.Delete(ServiceName, testKey)
	return true
}

type envKeyring struct{}

// GetKey retrieves the encryption key from INVOICER_DB_KEY
func (k *envKeyring) GetKey() (string, error) {
	key := os.Getenv(KeyEnv)
	if key == "" {
		return "", fmt.Errorf("%s environment variable not set", KeyEnv)
	}

	return key, nil
}

// SetKey cannot persist anything; the caller must export the variable
func (k *envKeyring) SetKey(password string) error {
	if password == "" {
		return errors.New("password cannot be empty")
	}

	return fmt.Errorf("key is read from %s: set that variable to change it", KeyEnv)
}

func (k *envKeyring) DeleteKey() error {
	return fmt.Errorf("key is read from %s: unset that variable manually", KeyEnv)
}

func (k *envKeyring) IsAvailable() bool {
	return os.Getenv(KeyEnv) != ""
}
