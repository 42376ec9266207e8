// Package validation validates settings structs through go-playground
// validator tags and reports failures as configuration errors keyed by the
// settings path (the mapstructure tag) of the offending field.
package validation
