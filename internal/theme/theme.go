// Package theme holds the reader's light/dark preference.
package theme

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/starford/devlog/internal/prefs"
)

// PreferenceKey is the preference under which the mode is stored.
const PreferenceKey = "theme"

// Mode is a presentational theme.
type Mode string

const (
	Light Mode = "light"
	Dark  Mode = "dark"
)

// ParseMode accepts "light" or "dark" in any case.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case Light, Dark:
		return m, nil
	default:
		return "", fmt.Errorf("theme: unknown mode %q", s)
	}
}

// Opposite returns the other mode.
func (m Mode) Opposite() Mode {
	if m == Dark {
		return Light
	}
	return Dark
}

// Manager owns the current mode and writes every change through to the
// preference store.
type Manager struct {
	store  prefs.Store
	logger *slog.Logger

	mu   sync.RWMutex
	mode Mode
}

// Init loads the stored preference. A missing or unreadable value falls
// back to fallback without writing it back.
func Init(ctx context.Context, store prefs.Store, fallback Mode, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{store: store, logger: logger, mode: fallback}

	raw, ok, err := store.Get(ctx, PreferenceKey)
	switch {
	case err != nil:
		logger.Warn("theme: read preference failed, using default",
			slog.String("default", string(fallback)),
			slog.String("error", err.Error()))
	case !ok:
		logger.Debug("theme: no stored preference", slog.String("default", string(fallback)))
	default:
		mode, err := ParseMode(raw)
		if err != nil {
			logger.Warn("theme: ignoring invalid stored preference", slog.String("value", raw))
			break
		}
		m.mode = mode
	}
	return m
}

// Mode returns the current mode.
func (m *Manager) Mode() Mode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mode
}

// Toggle flips the mode and persists the result.
func (m *Manager) Toggle(ctx context.Context) (Mode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setLocked(ctx, m.mode.Opposite())
}

// Set stores an explicit mode.
func (m *Manager) Set(ctx context.Context, mode Mode) (Mode, error) {
	if _, err := ParseMode(string(mode)); err != nil {
		return m.Mode(), err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setLocked(ctx, mode)
}

func (m *Manager) setLocked(ctx context.Context, mode Mode) (Mode, error) {
	if err := m.store.Set(ctx, PreferenceKey, string(mode)); err != nil {
		return m.mode, err
	}
	m.mode = mode
	m.logger.Info("theme: changed", slog.String("mode", string(mode)))
	return mode, nil
}
