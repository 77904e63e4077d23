package util

import (
	"fmt"
	"runtime"
)

var (
	// Version is set at build time with -ldflags "-X .../util.Version=v1.2.3".
	Version = "dev"
)

func UserAgent() string {
	return fmt.Sprintf("Retrospect/%s (%s; %s)", Version, runtime.GOOS, runtime.GOARCH)
}
