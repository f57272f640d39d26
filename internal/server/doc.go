// Package server exposes the explorer over HTTP for the browser client. It is
// compiled in development builds only; with the production build tag the
// handler answers 404 for every route.
package server
