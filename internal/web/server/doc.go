// Package server runs the registry HTTP API with graceful shutdown.
package server
