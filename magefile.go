//go:build mage

package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binDir = "bin"

// Default target to run when none is specified
var Default = Build

// Build builds the jsontranslate binary
func Build() error {
	return sh.RunV("go", "build", "-o", filepath.Join(binDir, "jsontranslate"), "./cmd/jsontranslate")
}

// Test runs all tests with the race detector
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Vet runs go vet
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Lambda builds the bootstrap binary for the provided.al2023 arm64 runtime
func Lambda() error {
	env := map[string]string{
		"GOOS":        "linux",
		"GOARCH":      "arm64",
		"CGO_ENABLED": "0",
	}
	out := filepath.Join(binDir, "lambda", "bootstrap")
	return sh.RunWithV(env, "go", "build", "-tags", "lambda.norpc", "-o", out, "./cmd/lambda")
}

// All runs vet, tests and both builds
func All() {
	mg.SerialDeps(Vet, Test, Build, Lambda)
}

// Clean removes build artifacts
func Clean() error {
	return os.RemoveAll(binDir)
}
