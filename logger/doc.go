// Package logger provides structured logging built on zerolog.
//
// The sink and propagation layers only log diagnostics (dropped emissions,
// forced timeouts); nothing in this package sits on the correctness path.
package logger
