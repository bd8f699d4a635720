// Package discovery locates modules and packages on disk and resolves the
// directories their migration files live in.
package discovery
