// Package config defines the format-agnostic configuration model for the
// explorer, along with the Loader interface used to read it.
//
// Two kinds of documents are modelled: the explorer configuration file
// (Model) and contract manifests (Manifest), which describe one generated
// contract client each. Concrete implementations of the Loader interface,
// such as for HCL, are provided in separate packages.
package config
