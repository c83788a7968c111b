// Package app contains the core application logic. It defines the main App
// struct, its configuration and the run lifecycle that loads a form
// definition, wires its calculated fields and replays user interactions,
// decoupled from any specific entrypoint like a CLI.
package app
