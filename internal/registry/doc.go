// SPDX-License-Identifier: MPL-2.0

// Package registry holds the named environment definitions of a descriptor.
//
// The registry is populated once at startup and frozen; every other component
// only reads from it.
package registry
