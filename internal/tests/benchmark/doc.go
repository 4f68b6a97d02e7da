// Package benchmark provides performance benchmarks for idmesh.
//
// Run benchmarks with:
//
//	go test -bench=. -benchmem ./internal/tests/benchmark/...
//
// Run the ID pipeline at one capacity only:
//
//	go test -bench='BenchmarkIDPipeline/capacity_64' -benchtime=10s ./internal/tests/benchmark/...
//
// Generate a report and compare two runs:
//
//	go test -bench=. -benchmem -count=5 ./internal/tests/benchmark/... | tee new.txt
//	benchstat old.txt new.txt
package benchmark
