// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the primary execution lifecycle (pipeline
// run, single-step resume, hyperparameter sweep), decoupled from any
// specific entrypoint like a CLI.
package app
