// Package version reports build metadata for the voxkit binary.
//
// Version, commit, branch and build time are set at link time and fall
// back to the module's VCS stamp:
//
//	go build -ldflags "-X github.com/kbukum/voxkit/version.Version=0.3.0" ./cmd/voxkit
package version
