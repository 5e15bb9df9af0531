// SPDX-License-Identifier: MPL-2.0

// Package descriptor loads environment descriptors into raw sections.
//
// A descriptor is a set of named sections, each holding key/value fields.
// Every field value is kept as an ordered list of lines, and every line is
// tokenised into Literal and Reference parts so that later stages can
// resolve cross-section references without re-scanning strings.
//
// Two source formats are understood:
//
//   - INI (tox.ini, setup.cfg): [tox], [testenv] and [testenv:NAME] sections,
//     list fields written as indented continuation lines, references written
//     as {[section]key}.
//   - TOML (tox.toml): root keys, [env_run_base] and [env.NAME] tables, with
//     {replace = "ref" | "env" | "posargs"} tables mapped onto the same model.
//
// Both loaders normalise legacy key spellings (basepython, passenv, setenv,
// changedir, whitelist_externals, envlist) to their canonical names.
package descriptor
