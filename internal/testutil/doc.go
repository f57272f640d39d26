// Package testutil provides fixtures shared by package tests: log capture,
// HCL snippets, synthetic wasm modules and stub Soroban RPC and Horizon
// servers.
package testutil
