// Package logging configures the process-wide logrus logger from the
// server configuration.
package logging
