package session

import (
	"fmt"
	"sync"

	"github.com/99designs/keyring"
)

const serviceName = "projecthub"

// The ring is opened lazily and shared: on some backends (notably
// macOS Keychain) every Open can prompt the user, and the session
// touches the ring several times per sign-in.
var (
	ringOnce sync.Once
	ring     keyring.Keyring
	ringErr  error
)

func openRing() (keyring.Keyring, error) {
	ringOnce.Do(func() {
		ring, ringErr = keyring.Open(keyring.Config{
			ServiceName: serviceName,
			AllowedBackends: []keyring.BackendType{
				keyring.KeychainBackend,
				keyring.SecretServiceBackend,
				keyring.WinCredBackend,
				keyring.PassBackend,
				keyring.FileBackend,
			},
			FileDir:                  "~/.config/projecthub/credentials",
			FilePasswordFunc:         keyring.FixedStringPrompt("projecthub-file-key"),
			KeychainTrustApplication: true,
		})
	})
	if ringErr != nil {
		return nil, fmt.Errorf("opening keyring: %w", ringErr)
	}
	return ring, nil
}

// getCredential retrieves a stored value by key.
func getCredential(key string) (string, error) {
	r, err := openRing()
	if err != nil {
		return "", err
	}

	item, err := r.Get(key)
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}
	return string(item.Data), nil
}

// setCredential stores a value by key.
func setCredential(key, value string) error {
	r, err := openRing()
	if err != nil {
		return err
	}

	if err := r.Set(keyring.Item{Key: key, Data: []byte(value)}); err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}
	return nil
}

// deleteCredential removes a stored value by key.
func deleteCredential(key string) error {
	r, err := openRing()
	if err != nil {
		return err
	}

	if err := r.Remove(key); err != nil {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}
	return nil
}
