// SPDX-License-Identifier: MPL-2.0

// Package envvars resolves the environment variables an environment runs with:
// passthrough lists, {env:NAME:default} substitution, set_env assignments
// (including dotenv files) and the final launch environment.
package envvars
