// Package config provides configuration management for CompScan.
//
// Configuration comes from three layers, applied in order:
//  1. Defaults from NewConfig
//  2. The YAML configuration file (.compscan), which also carries the
//     ordered competitor list
//  3. CLI flags and environment variable overrides
//
// The competitor list is the one mandatory input: a run with no configured
// entities fails validation before any processing begins.
package config
