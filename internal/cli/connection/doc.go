// Package connection is how the CLI reaches a node: an HTTP client for
// the frontend API, which unwraps the response envelope and turns error
// envelopes into *APIError, and SendLocal for the local console socket.
package connection
