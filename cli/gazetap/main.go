package main

import (
	"os"

	gazetapcmder "github.com/papercomputeco/gazetap/cmd/gazetap"
)

func main() {
	cmd := gazetapcmder.NewGazetapCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
