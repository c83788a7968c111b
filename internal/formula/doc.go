// Package formula describes a calculated field: the expression to evaluate
// and the bindings from formula variables to the form fields that supply
// their values.
//
// A Spec is immutable once handed to an engine. Variable names are plain
// identifiers and are referenced inside the expression as {name}.
package formula
