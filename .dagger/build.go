package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dagger/gazetap/internal/dagger"
)

// crossCompilers maps each target architecture to the C compiler CGO uses.
var crossCompilers = map[string]string{
	"amd64": "gcc",
	"arm64": "aarch64-linux-gnu-gcc",
}

// Build and return directory of go binaries
func (g *Gazetap) Build(
	ctx context.Context,

	// Linker flags for go build
	// +optional
	// +default="-s -w"
	ldflags string,
) *dagger.Directory {
	// go-sqlite3 needs CGO, so the matrix is linux only.
	goarches := []string{"amd64", "arm64"}

	// create empty directory to put build artifacts
	outputs := dag.Directory()

	golang := g.goContainer().
		WithEnvVariable("GOOS", "linux")

	for _, goarch := range goarches {
		// create directory for each architecture
		path := fmt.Sprintf("linux/%s/", goarch)

		// build artifact
		build := golang.
			WithEnvVariable("GOARCH", goarch).
			WithEnvVariable("CC", crossCompilers[goarch]).
			WithExec([]string{"go", "build", "-ldflags", ldflags, "-o", path, "./cli/gazetap"})

		// add build to outputs
		outputs = outputs.WithDirectory(path, build.Directory(path))
	}

	// return build directory
	return outputs
}

// BuildRelease compiles versioned release binaries with embedded version info
func (g *Gazetap) BuildRelease(
	ctx context.Context,

	// Version string of build
	version string,

	// Git commit SHA of build
	commit string,
) *dagger.Directory {
	buildtime := time.Now()

	ldflags := []string{
		"-s",
		"-w",
		fmt.Sprintf("-X 'github.com/papercomputeco/gazetap/pkg/utils.Version=%s'", version),
		fmt.Sprintf("-X 'github.com/papercomputeco/gazetap/pkg/utils.Sha=%s'", commit),
		fmt.Sprintf("-X 'github.com/papercomputeco/gazetap/pkg/utils.Buildtime=%s'", buildtime),
	}

	return g.Build(ctx, strings.Join(ldflags, " "))
}
