// Package main provides the entry point for the CompScan CLI.
//
// CompScan monitors competitor public pages and reports how their content
// evolves over time. Each run captures every configured page, compares it
// against the most recent archived baseline, and writes a dated markdown
// intelligence report.
//
// Usage:
//
//	compscan run
//	compscan history <competitor>
//
// See --help for all available options.
package main

// main is the entry point for CompScan.
func main() {
	Execute()
}
