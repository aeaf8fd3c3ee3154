//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

var binaries = []string{"objtool", "meshview"}

// All builds every command into ./bin.
func (Build) All() error {
	mg.Deps(Build.Objtool, Build.Meshview)
	return nil
}

// Objtool builds the mesh CLI. It has no cgo dependencies.
func (Build) Objtool() error {
	return buildBinary("objtool", withEnv("CGO_ENABLED=0"))
}

// Meshview builds the viewer. Requires SDL2 development headers.
func (Build) Meshview() error {
	return buildBinary("meshview")
}

func buildBinary(name string, options ...cmdOption) error {
	out := filepath.Join("bin", name)
	options = append(options, withArgs("build", "-o", out, "./cmd/"+name), withStream())
	_, err := executeCmd("go", options...)
	return err
}

// Clean removes built binaries.
func Clean() error {
	for _, name := range binaries {
		path := filepath.Join("bin", name)
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("removing %s: %w", path, err)
		}
	}
	return nil
}
