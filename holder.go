package memberjwt

import "sync"

// ConfigLoader produces the configuration for the process-wide Service.
type ConfigLoader func() (Config, error)

var (
	instanceMu      sync.Mutex
	instance        *Service
	instanceLoader  ConfigLoader = func() (Config, error) { return LoadConfig("") }
	instanceOptions []Option
)

// SetConfigLoader replaces how Instance builds the process-wide Service and
// drops any instance already built.
func SetConfigLoader(loader ConfigLoader, opts ...Option) {
	instanceMu.Lock()
	defer instanceMu.Unlock()
	instanceLoader = loader
	instanceOptions = opts
	instance = nil
}

// Instance returns the process-wide Service, building it on first use.
// Hosts that own a composition root should call NewService instead.
// A failed build is not cached; the next call tries again.
func Instance() (*Service, error) {
	instanceMu.Lock()
	defer instanceMu.Unlock()
	if instance != nil {
		return instance, nil
	}

	cfg, err := instanceLoader()
	if err != nil {
		return nil, err
	}
	svc, err := NewService(cfg, instanceOptions...)
	if err != nil {
		return nil, err
	}
	instance = svc
	return instance, nil
}

// ResetInstance drops the process-wide Service so the next Instance call
// rebuilds it from fresh configuration. Services already handed out keep
// working with their own configuration.
func ResetInstance() {
	instanceMu.Lock()
	defer instanceMu.Unlock()
	instance = nil
}
