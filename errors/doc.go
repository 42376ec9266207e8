// Package errors defines the startup error taxonomy for launchpad.
//
// Every fatal startup failure is an *AppError carrying a machine-readable
// code. ExitCode maps any error, wrapped or not, to the process exit status
// the supervisor observes.
package errors
