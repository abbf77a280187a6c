// Package main points at the m2perf CLI in ./cmd/m2perf.
package main

import "fmt"

func main() {
	fmt.Println("m2perf: run 'go run ./cmd/m2perf [options] <logfile>'")
}
