//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Builds the command line renderer into bin/.
func (Build) Cli() error {
	fmt.Println("Building renderer...")
	_, err := executeCmd("go", withArgs("build", "-o", "bin/octree-pathtracer", "."), withStream())
	return err
}

// Builds the web server into bin/.
func (Build) Web() error {
	fmt.Println("Building web server...")
	_, err := executeCmd("go", withArgs("build", "-o", "bin/octree-web", "./web"), withStream())
	return err
}

// Builds every binary.
func (Build) All() {
	mg.SerialDeps(Build.Cli, Build.Web)
}

type Test mg.Namespace

// Runs the unit tests.
func (Test) Unit() error {
	_, err := executeCmd("go", withArgs("test", "./..."), withStream())
	return err
}

// Runs the unit tests with the race detector. The renderer's worker pool
// and event stream are the main target.
func (Test) Race() error {
	_, err := executeCmd("go", withArgs("test", "-race", "./pkg/renderer/...", "./web/..."), withStream())
	return err
}

type Lint mg.Namespace

// Runs go vet and checks formatting.
func (Lint) Vet() error {
	if _, err := executeCmd("go", withArgs("vet", "./...")); err != nil {
		return err
	}
	out, err := executeCmd("gofmt", withArgs("-l", "."))
	if err != nil {
		return err
	}
	if out != "" {
		return fmt.Errorf("unformatted files:\n%s", out)
	}
	return nil
}

// Tidies go.mod.
func Tidy() error {
	_, err := executeCmd("go", withArgs("mod", "tidy"))
	return err
}
