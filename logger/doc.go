// Package logger provides structured logging for launchpad using zerolog.
//
// It supports console and JSON output, a configurable level, and
// component-scoped loggers carrying structured fields.
//
//	logging:
//	  level: "info"
//	  format: "json"
//
//	log := logger.WithComponent("bootstrap")
//	log.Info("listener bound", logger.Fields("addr", addr))
package logger
