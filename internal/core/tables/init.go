// Package tables registers all dataset schemas with the core registry.
// Import this package to ensure all schemas are registered.
package tables

// This file exists to provide a single import point.
// Each dataset file uses init() to register its schema.
