// Package server holds the HTTP server configuration and constants.
//
// While the main application entry point handles the server startup, this package
// defines the configuration structures and valid values for server settings,
// such as the public domain used for url building.
//
// # Configuration
//
// The Config struct defines the HTTP port, API key, and the public domain.
//
// # Usage
//
// This package is primarily used by the core/config package to embed server settings
// and by features that render canonical urls.
package server
