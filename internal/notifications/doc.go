// Package notifications forwards display events to an operator channel.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and degrades to a no-op when no topic is set. Call and outage
// events are individually switchable; the Dispatcher moves delivery off the
// poll loop so a slow ntfy server never delays the screen.
package notifications
