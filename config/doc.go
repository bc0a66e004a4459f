// Package config loads daemon configuration from config.yml, .env files,
// and environment variables, and holds the user-facing transcription
// settings with their defaults and validation rules.
package config
