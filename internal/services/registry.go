// Package services provides the supporting services shared by the unilang front ends:
// help generation, markdown rendering and shell completion.
package services

import (
	"fmt"
	"sort"
	"sync"
)

// Service is a named component that is initialized once before use.
type Service interface {
	Name() string
	Initialize() error
}

// Registry manages service registration and lifecycle.
type Registry struct {
	mu       sync.RWMutex
	services map[string]Service
}

// NewRegistry creates a new service registry with an empty service map.
func NewRegistry() *Registry {
	return &Registry{
		services: make(map[string]Service),
	}
}

// RegisterService adds a service to the registry, returning an error if already registered.
func (r *Registry) RegisterService(service Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := service.Name()
	if _, exists := r.services[name]; exists {
		return fmt.Errorf("service %s already registered", name)
	}

	r.services[name] = service
	return nil
}

// GetService retrieves a service by name, returning an error if not found.
func (r *Registry) GetService(name string) (Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	service, exists := r.services[name]
	if !exists {
		return nil, fmt.Errorf("service %s not found", name)
	}

	return service, nil
}

// InitializeAll initializes all registered services in name order.
func (r *Registry) InitializeAll() error {
	services := r.GetAllServices()
	names := make([]string, 0, len(services))
	for name := range services {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := services[name].Initialize(); err != nil {
			return fmt.Errorf("failed to initialize service %s: %w", name, err)
		}
	}

	return nil
}

// GetAllServices returns a copy of all registered services.
func (r *Registry) GetAllServices() map[string]Service {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]Service, len(r.services))
	for name, service := range r.services {
		result[name] = service
	}

	return result
}

// GlobalRegistry is the process-wide service registry.
var GlobalRegistry = NewRegistry()

// GetGlobalRegistry returns the global service registry instance.
func GetGlobalRegistry() *Registry {
	return GlobalRegistry
}

// getTypedService fetches a service from the global registry and asserts its type.
func getTypedService[T Service](name string) (T, error) {
	var zero T
	service, err := GetGlobalRegistry().GetService(name)
	if err != nil {
		return zero, err
	}
	typed, ok := service.(T)
	if !ok {
		return zero, fmt.Errorf("service %s has unexpected type %T", name, service)
	}
	return typed, nil
}
