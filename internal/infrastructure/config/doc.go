// Package config loads application configuration from environment
// variables via envconfig, with sane defaults for local development.
package config
