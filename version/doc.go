// Package version reports the build version of the restorm command.
//
// Version, git commit, branch, and build time are set at compile time
// via -ldflags; otherwise the module build info is used:
//
//	go build -ldflags "-X github.com/kbukum/restorm/version.Version=1.0.0" ./cmd/restorm
package version
