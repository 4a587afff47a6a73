// Package version holds the build version, set at link time with
// -ldflags "-X github.com/brixies/brix-cli/internal/version.Current=v1.2.3".
package version

// Current is the version of the running binary.
var Current = "dev"
