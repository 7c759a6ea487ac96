// SPDX-License-Identifier: MPL-2.0

// Package issue classifies the failures cats can report and renders them the
// way they reach the user: "<resource>: <message>", optionally followed by
// remediation hints and, in verbose mode, the full error chain.
//
// Every failure is fatal. The Kind of an error only decides how it is
// described; the process always exits with status 1.
package issue
