// Package factory creates cache and lock components by descriptor and holds
// the references they resolve their collaborators from.
package factory

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"cachelock-service/internal/domain"
	"cachelock-service/internal/infra/redis"
	"cachelock-service/pkg/connection"
	"cachelock-service/pkg/locker"
)

// ErrNotRegistered is returned by Create for an unknown descriptor.
var ErrNotRegistered = errors.New("no constructor registered for descriptor")

// Constructor builds a new, unconfigured component.
type Constructor func() connection.Component

type registration struct {
	locator     connection.Descriptor
	constructor Constructor
}

// Factory maps descriptors to constructors. It is safe for concurrent use.
type Factory struct {
	mu            sync.RWMutex
	registrations []registration
}

// New creates an empty factory.
func New() *Factory {
	return &Factory{}
}

// NewDefault creates a factory with the Redis cache and lock registered
// under domain.CacheDescriptor and domain.LockDescriptor.
func NewDefault(logger *zap.Logger) *Factory {
	if logger == nil {
		logger = zap.NewNop()
	}

	f := New()
	f.Register(domain.CacheDescriptor, func() connection.Component {
		return redis.NewCache(logger.Named("cache"))
	})
	f.Register(domain.LockDescriptor, func() connection.Component {
		return locker.NewRedisLocker(logger.Named("lock"))
	})

	return f
}

// Register adds a constructor for locator. Later registrations do not
// replace earlier ones; the first match wins.
func (f *Factory) Register(locator connection.Descriptor, constructor Constructor) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.registrations = append(f.registrations, registration{
		locator:     locator,
		constructor: constructor,
	})
}

// CanCreate reports whether some constructor matches locator.
func (f *Factory) CanCreate(locator connection.Descriptor) bool {
	return f.find(locator) != nil
}

// Create builds a new component matching locator.
func (f *Factory) Create(locator connection.Descriptor) (connection.Component, error) {
	constructor := f.find(locator)
	if constructor == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, locator)
	}

	return constructor(), nil
}

func (f *Factory) find(locator connection.Descriptor) Constructor {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for _, r := range f.registrations {
		if r.locator.Match(locator) {
			return r.constructor
		}
	}

	return nil
}

// CreateCache builds the component registered for domain.CacheDescriptor.
func CreateCache(f *Factory) (domain.Cache, error) {
	return create[domain.Cache](f, domain.CacheDescriptor)
}

// CreateLocker builds the component registered for domain.LockDescriptor.
func CreateLocker(f *Factory) (domain.Locker, error) {
	return create[domain.Locker](f, domain.LockDescriptor)
}

func create[T any](f *Factory, locator connection.Descriptor) (T, error) {
	var zero T

	component, err := f.Create(locator)
	if err != nil {
		return zero, err
	}
	typed, ok := component.(T)
	if !ok {
		return zero, fmt.Errorf("component %s has unexpected type %T", locator, component)
	}

	return typed, nil
}
