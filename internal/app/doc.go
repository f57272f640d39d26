// Package app contains the core application logic. It wires configuration,
// networks, the contract loader and the supporting services into an App,
// decoupled from any specific entrypoint like a CLI or server.
package app
