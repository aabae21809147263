// Package config defines the Meridian configuration structure and its
// YAML loading, defaulting, and validation.
package config
