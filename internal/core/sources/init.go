// Package sources registers the built-in data sources with the core
// registry. Importing it registers the reference tables; RegisterDir and
// RegisterPostgres add sources that depend on runtime configuration.
package sources
