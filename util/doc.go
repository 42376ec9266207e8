// Package util holds small parsing and display helpers shared by the
// settings loader and the startup summary.
package util
