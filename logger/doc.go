// Package logger provides structured logging for restorm using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers with structured fields.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("orm")
//	log.Debug("model registered", logger.Fields("model", "Person"))
package logger
