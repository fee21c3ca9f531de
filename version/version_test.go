package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	info := Get()
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
}

func TestInfoString(t *testing.T) {
	info := Info{CommitHash: "0123456789abcdef", BuildTime: "2026-10-19", Version: "v0.3.0"}
	assert.Equal(t, "extfn v0.3.0 (commit 0123456, built 2026-10-19)", info.String())

	info = Info{CommitHash: "dev", BuildTime: "unknown", Version: "dev"}
	assert.Equal(t, "extfn dev (commit dev, built unknown)", info.String())
}
