// objtool is a CLI utility for inspecting, normalizing and packing OBJ meshes.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Faultbox/trimesh/internal/logger"
	"github.com/Faultbox/trimesh/pkg/formats"
	"github.com/Faultbox/trimesh/pkg/mesh"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "info":
		err = cmdInfo(args)
	case "check":
		err = cmdCheck(args)
	case "pack":
		err = cmdPack(args)
	case "unpack", "dump":
		err = cmdUnpack(args)
	case "normalize", "norm":
		err = cmdNormalize(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`objtool - triangle mesh pipeline utility

Usage:
  objtool <command> [options]

Commands:
  info <file.obj>...                     Show pool sizes, faces and diagnostics
  check [-policy p] <file.obj>...        Report diagnostics, exit 2 if any face was out of range
  pack [options] <file.obj>              Normalize and pack into a .tmsh buffer
  unpack <file.tmsh> [output.obj]        Describe a packed buffer, optionally export it
  normalize [-radius r] <file.obj>       Recenter and rescale, writing OBJ

Common options:
  -policy legacy|lenient|strict          Out-of-range reference handling (default legacy)
  -v                                     Log every diagnostic, including unrecognized lines

Examples:
  objtool info cube.obj
  objtool check -policy strict models/*.obj
  objtool pack -radius 1 -topology triangles -o cube.tmsh cube.obj
  objtool normalize -o centered.obj scan.obj`)
}

// commonFlags are shared by every command that parses OBJ input.
type commonFlags struct {
	policy  *string
	verbose *bool
}

func addCommonFlags(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		policy:  fs.String("policy", "legacy", "Index policy: legacy, lenient or strict"),
		verbose: fs.Bool("v", false, "Log unrecognized lines too"),
	}
}

// setup initializes logging and returns the parse options for the command.
func (c commonFlags) setup() ([]formats.ParseOption, error) {
	level := "info"
	if *c.verbose {
		level = "debug"
	}
	if err := logger.Init(level, ""); err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	policy, err := formats.ParseIndexPolicy(*c.policy)
	if err != nil {
		return nil, err
	}
	return []formats.ParseOption{formats.WithIndexPolicy(policy)}, nil
}

// loadMesh parses and resolves one file, logging its diagnostics as they occur.
func loadMesh(path string, opts []formats.ParseOption) (*mesh.Mesh, []formats.Diagnostic, error) {
	opts = append(opts, formats.WithDiagnosticFunc(logger.DiagnosticFunc(path)))
	return mesh.LoadOBJFile(path, opts...)
}

// createOutput opens path for writing, or returns stdout for "" and "-".
func createOutput(path string) (*os.File, func() error, error) {
	if path == "" || path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
