// Package config resolves follow's settings from layered sources.
//
// Layers, lowest priority first:
//
//  1. Built-in defaults (Default)
//  2. A TOML or YAML config file, with @include support
//  3. A .env file
//  4. FOLLOW_* environment variables
//  5. Overrides, usually command-line flags
//
// Each layer is a nested map; later layers win key by key. Typed section
// accessors (Follow, Logging, Output) read the merged result and fall back
// to defaults for missing keys. Values of the wrong type also fall back,
// and are reported by ConfigErrors and Validate.
package config
