// Package config loads, normalizes, and validates queue display configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// QUEUEDISPLAY_API_URL and QUEUEDISPLAY_ROOMS. The Config type centralizes
// every knob the daemon and CLI need: the backend address, the rooms shown on
// the screen, announcement output, and notification forwarding.
//
// Always obtain settings through this package so downstream code receives
// sanitized room lists, canonical log formats, and clear validation errors.
package config
