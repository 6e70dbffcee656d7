package config

import (
	"sync"
)

var (
	// globalManager is the singleton configuration manager instance
	globalManager *Manager
	globalMu      sync.Mutex
)

// Initialize creates and initializes the global configuration manager.
// This should be called once at application startup.
func Initialize(configPath string) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	store, err := NewFileStore(configPath)
	if err != nil {
		return err
	}

	manager := NewManager(store)
	if err := manager.RegisterSection(NewAffineSection()); err != nil {
		return err
	}

	if err := manager.LoadAll(); err != nil {
		return err
	}

	globalManager = manager
	return nil
}

// Global returns the global configuration manager.
// Panics if Initialize has not been called.
func Global() *Manager {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalManager == nil {
		panic("config not initialized: call config.Initialize first")
	}

	return globalManager
}

// IsInitialized returns true if the global configuration has been initialized.
func IsInitialized() bool {
	globalMu.Lock()
	defer globalMu.Unlock()
	return globalManager != nil
}

// GetAffine returns the AFFiNE section from global config.
// Returns nil if config is not initialized.
func GetAffine() *AffineSection {
	if !IsInitialized() {
		return nil
	}

	section, ok := Global().GetSection(SectionIDAffine)
	if !ok {
		return nil
	}

	affineSection, ok := section.(*AffineSection)
	if !ok {
		return nil
	}

	return affineSection
}

// reset clears the global manager. Used by tests.
func reset() {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalManager = nil
}
