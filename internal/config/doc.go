// Package config defines the format-agnostic form definition model and the
// Loader interface that produces it.
//
// The FormModel is what the app layer builds its in-memory form and
// calculated fields from. Concrete loaders, such as the HCL one, live in
// separate packages.
package config
