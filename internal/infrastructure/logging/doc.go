// Package logging provides structured logging built on zap.
//
// Production gets JSON output, development gets colorized console output.
// Components receive a *Logger by injection; there is no package-level
// global logger.
package logging
