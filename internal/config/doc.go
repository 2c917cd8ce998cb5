// Package config loads application settings from the environment (LEXIS_*)
// and an optional config.yaml, and validates them before the server starts.
package config
