// Package provider defines the base provider abstraction shared by the
// transcription and processing backends: a minimal Provider interface,
// typed factories, a generic registry, and credential verification.
package provider
