//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Check mg.Namespace

// Test runs the unit tests with the race detector.
func (Check) Test() error {
	_, err := executeCmd("go", withArgs("test", "-race", "./..."), withStream())
	return err
}

// Core runs the tests of the packages that need neither SDL2 nor OpenGL.
func (Check) Core() error {
	_, err := executeCmd("go", withArgs("test", "./pkg/...", "./internal/config/...", "./internal/logger/...", "./internal/watch/...", "./cmd/objtool/..."), withStream())
	return err
}

// Vet runs go vet.
func (Check) Vet() error {
	_, err := executeCmd("go", withArgs("vet", "./..."), withStream())
	return err
}

// Tidy runs go mod tidy.
func (Check) Tidy() error {
	_, err := executeCmd("go", withArgs("mod", "tidy"), withStream())
	return err
}

// All runs vet then the full test suite.
func (Check) All() {
	mg.SerialDeps(Check.Vet, Check.Test)
}
