// internal/services/settings_service.go
package services

import (
	"errors"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/wrdrobe/wrdrobe-backend/internal/storage"
)

var ErrThemeOutOfRange = errors.New("theme value must be between 0 and 100")

// SettingsService holds small user preferences. Currently that is just
// the theme blend position, an integer 0-100 between the light and dark
// palettes.
type SettingsService struct {
	mu    sync.RWMutex
	store storage.Store
	theme int
}

func NewSettingsService(store storage.Store) *SettingsService {
	s := &SettingsService{store: store}
	if data, ok, err := store.Get(storage.KeyThemeSlider); err == nil && ok {
		v, err := strconv.Atoi(string(data))
		if err != nil || v < 0 || v > 100 {
			logrus.Warn("Discarding corrupt theme setting")
		} else {
			s.theme = v
		}
	}
	return s
}

func (s *SettingsService) Theme() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

func (s *SettingsService) SetTheme(value int) error {
	if value < 0 || value > 100 {
		return ErrThemeOutOfRange
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.theme = value
	return s.store.Set(storage.KeyThemeSlider, []byte(strconv.Itoa(value)))
}
