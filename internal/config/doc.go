// Package config resolves the process settings once at startup. It captures the
// process environment, fills in keys that are absent from it using an optional
// KEY=VALUE override file, selects either the development or the production
// profile from the DEBUG flag, and merges the selected profile over a common
// base layer. The result is a read-only Settings value that the rest of the
// application receives by injection.
package config
