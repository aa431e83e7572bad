// Package types defines the shared wire types exchanged between the agent
// and the server. NodeSnapshot is the canonical JSON payload the agent ships
// after every probe cycle; the server stores it, serves it over the REST API
// and WebSocket stream, and evaluates alert rules against it.
package types
