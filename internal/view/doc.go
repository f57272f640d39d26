// Package view holds the explorer's UI state as plain values: the modal
// toggle, the contract selection and the method form. Rendering is left to
// the client; this package only decides what to show.
package view
