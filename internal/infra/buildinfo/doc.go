// Package buildinfo exposes build information for idmesh.
//
// Version, Commit and BuildTime are injected via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/idmesh-go/internal/infra/buildinfo.Version=v0.3.0"
//
// When Commit is not injected it falls back to the VCS revision the Go
// toolchain embeds in the binary.
package buildinfo
