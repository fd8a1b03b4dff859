// Package application wires the resolved settings into the HTTP handler,
// router and server, keeping the main package focused on CLI parsing and
// orchestration.
package application
