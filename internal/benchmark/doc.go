// SPDX-License-Identifier: MPL-2.0

// Package benchmark provides benchmarks for PGO profile generation.
// They cover the hot paths of a cats run:
//   - the byte filter with each option combination
//   - UTF-16 transcoding
//   - configuration loading and schema validation
//   - end-to-end driver runs, streamed and in place
//
// To generate a profile, run:
//
//	go test -run='^$' -bench=. -cpuprofile=default.pgo ./internal/benchmark
package benchmark
