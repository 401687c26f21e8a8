// Package assets provides the HTML templates embedded in the binary.
//
// The only template today is the engine shell: a blank page that loads the
// pdf.js library from an engine locator, points its worker at the same
// locator, and exposes a small window.pdfraster API (open, pageSize,
// render, close) driven from Go over the DevTools protocol.
//
// # Directory Structure
//
//	templates/
//	└── shell.html    # engine host page
//
// # Security
//
// Template names are validated to prevent path traversal. Locator URLs are
// trusted input: they come from configuration, never from documents.
package assets
