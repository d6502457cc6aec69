// Package util holds small generic helpers shared across datakit
// packages.
package util
