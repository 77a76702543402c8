package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/Skufu/GoRocky/internal/artifact"
	"github.com/Skufu/GoRocky/internal/predict"
)

// Exit codes for different failure modes
const (
	ExitSuccess          = 0
	ExitError            = 1 // usage, input or runtime error
	ExitArtifactsMissing = 2 // scaler or a classifier could not be loaded
	ExitPredictionFailed = 3
)

func main() {
	err := execute()
	if err == nil {
		os.Exit(ExitSuccess)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(exitCode(err))
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, artifact.ErrArtifactNotFound):
		return ExitArtifactsMissing
	case errors.Is(err, predict.ErrPredictionFailure):
		return ExitPredictionFailed
	default:
		return ExitError
	}
}
