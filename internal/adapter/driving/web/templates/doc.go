// Package templates holds the templ components that render the web GUI.
// The *_templ.go files are produced by `go tool templ generate` at the
// module root.
package templates
