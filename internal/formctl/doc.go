// Package formctl owns every calculated field of one form.
//
// # Responsibilities
//
// A Controller resolves output elements by name, builds one calc.Engine per
// calculated field and hands each engine itself as the dirty tracker, so
// that values written by calculations never make the form look edited.
//
// # Cascading
//
// When an engine writes a new value into its output, the controller
// dispatches that element's trigger event on the form. Engines bound to the
// element then recalculate in turn. Cycles across calculated fields are
// rejected when a field is added, before any engine is built.
package formctl
