// Package middleware provides gin middleware: CORS and per-IP rate
// limiting.
package middleware
