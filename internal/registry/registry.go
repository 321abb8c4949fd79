// Package registry maps logical service names to base URLs. The mapping is
// fixed at startup from configuration and read-only afterwards, so lookups
// are safe from any goroutine.
package registry

import (
	"errors"
	"fmt"
)

// Service is a logical downstream service name.
type Service string

// Known services.
const (
	UserService    Service = "UserService"
	ProductService Service = "ProductService"
	OrderService   Service = "OrderService"
)

// ErrUnknownService is returned when resolving a name outside the fixed set.
var ErrUnknownService = errors.New("unknown service")

// Default local base URLs, used when no override is configured.
const (
	DefaultUserServiceURL    = "http://localhost:5001"
	DefaultProductServiceURL = "http://localhost:5002"
	DefaultOrderServiceURL   = "http://localhost:5003"
)

// Config holds per-service base URL overrides. Empty fields fall back to the
// local defaults.
type Config struct {
	UserServiceURL    string
	ProductServiceURL string
	OrderServiceURL   string
}

// Registry resolves logical service names to base URLs.
type Registry struct {
	urls map[Service]string
}

// New builds a registry from the given overrides.
func New(cfg Config) *Registry {
	urls := map[Service]string{
		UserService:    DefaultUserServiceURL,
		ProductService: DefaultProductServiceURL,
		OrderService:   DefaultOrderServiceURL,
	}
	if cfg.UserServiceURL != "" {
		urls[UserService] = cfg.UserServiceURL
	}
	if cfg.ProductServiceURL != "" {
		urls[ProductService] = cfg.ProductServiceURL
	}
	if cfg.OrderServiceURL != "" {
		urls[OrderService] = cfg.OrderServiceURL
	}
	return &Registry{urls: urls}
}

// Resolve returns the base URL for the given service.
func (r *Registry) Resolve(svc Service) (string, error) {
	url, ok := r.urls[svc]
	if !ok {
		return "", fmt.Errorf("resolve %q: %w", string(svc), ErrUnknownService)
	}
	return url, nil
}

// All returns the full set of known services in stable order.
func All() []Service {
	return []Service{UserService, ProductService, OrderService}
}

// Resource returns the API path segment a service serves under, e.g.
// "users" for UserService. Unknown services map to an empty string.
func Resource(svc Service) string {
	switch svc {
	case UserService:
		return "users"
	case ProductService:
		return "products"
	case OrderService:
		return "orders"
	default:
		return ""
	}
}
