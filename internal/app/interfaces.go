package app

import (
	"github.com/mobigenie/mobigenie/config"
	"github.com/mobigenie/mobigenie/internal/catalog"
	"github.com/mobigenie/mobigenie/internal/chat"
)

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// CatalogProvider provides read access to the catalog store
type CatalogProvider interface {
	Store() *catalog.Store
}

// ChatProvider provides the chat gateway
type ChatProvider interface {
	Chat() chat.Gateway
}

// Ensure Application implements all interfaces
var (
	_ ConfigProvider  = (*Application)(nil)
	_ CatalogProvider = (*Application)(nil)
	_ ChatProvider    = (*Application)(nil)
)
