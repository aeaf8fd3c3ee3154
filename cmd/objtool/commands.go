package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"runtime"

	"go.uber.org/zap"

	"github.com/Faultbox/trimesh/internal/logger"
	"github.com/Faultbox/trimesh/pkg/formats"
	"github.com/Faultbox/trimesh/pkg/mesh"
)

// errDiagnostics makes check exit with status 2.
var errDiagnostics = errors.New("out-of-range references found")

func cmdInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	common := addCommonFlags(fs)
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: objtool info <file.obj>...")
		os.Exit(1)
	}
	opts, err := common.setup()
	if err != nil {
		return err
	}

	for i, path := range fs.Args() {
		obj, err := formats.ParseOBJFile(path, opts...)
		if err != nil {
			return err
		}
		if i > 0 {
			fmt.Println()
		}
		printInfo(path, obj)
	}
	return nil
}

func printInfo(path string, obj *formats.OBJ) {
	s := obj.Stats()
	m := mesh.Resolve(obj)

	fmt.Printf("File:      %s\n", path)
	fmt.Printf("Positions: %d\n", s.Positions)
	fmt.Printf("Normals:   %d\n", s.Normals)
	fmt.Printf("UVs:       %d (faces reference UVs: %v)\n", s.UVs, obj.HasUVs)
	fmt.Printf("Faces:     %d triangles, %d quads (topology %s)\n", s.Triangles, s.Quads, obj.Topology)
	fmt.Printf("Output:    %d vertices, %d triangles\n", m.VertexCount(), m.TriangleCount())

	if m.VertexCount() > 0 {
		b := mesh.ComputeBounds(m.Vertices)
		fmt.Printf("Bounds:    min %v max %v\n", b.Min.Array(), b.Max.Array())
		fmt.Printf("Extent:    %v (largest %g)\n", b.Extent().Array(), b.LargestExtent())
	}

	if len(obj.Diagnostics) > 0 {
		fmt.Println("Diagnostics:")
		for _, kind := range []formats.DiagnosticKind{formats.UnrecognizedLine, formats.IndexOutOfRange, formats.TopologyMismatch} {
			if n := s.Diagnostics[kind]; n > 0 {
				fmt.Printf("  %-20s %d\n", kind, n)
			}
		}
	}
}

func cmdCheck(args []string) error {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	common := addCommonFlags(fs)
	workers := fs.Int("j", runtime.NumCPU(), "Files loaded in parallel")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: objtool check [-policy p] [-j n] <file.obj>...")
		os.Exit(1)
	}
	opts, err := common.setup()
	if err != nil {
		return err
	}

	results, err := mesh.LoadAll(context.Background(), fs.Args(), *workers, opts...)
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		outOfRange := 0
		for _, d := range r.Diagnostics {
			logger.Diagnostic(r.Path, d)
			if d.Kind == formats.IndexOutOfRange {
				outOfRange++
			}
		}
		status := "ok"
		if outOfRange > 0 {
			status = "FAIL"
			failed++
		}
		fmt.Printf("%-4s %s: %d vertices, %d diagnostics\n", status, r.Path, r.Mesh.VertexCount(), len(r.Diagnostics))
	}

	if failed > 0 {
		logger.Sync()
		fmt.Fprintf(os.Stderr, "%d of %d files: %v\n", failed, len(results), errDiagnostics)
		os.Exit(2)
	}
	return nil
}

func cmdPack(args []string) error {
	fs := flag.NewFlagSet("pack", flag.ExitOnError)
	common := addCommonFlags(fs)
	radius := fs.Float64("radius", 2, "Normalization target radius")
	raw := fs.Bool("raw", false, "Skip normalization")
	topology := fs.String("topology", "triangles", "Primitive topology recorded in the buffer")
	output := fs.String("o", "", "Output file (default <input>.tmsh)")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: objtool pack [-radius r] [-raw] [-topology t] [-o out.tmsh] <file.obj>")
		os.Exit(1)
	}
	opts, err := common.setup()
	if err != nil {
		return err
	}
	topo, err := mesh.ParseTopology(*topology)
	if err != nil {
		return err
	}

	input := fs.Arg(0)
	m, _, err := loadMesh(input, opts)
	if err != nil {
		return err
	}
	if !*raw {
		if err := mesh.Normalize(m, float32(*radius)); err != nil {
			return fmt.Errorf("normalizing %s: %w", input, err)
		}
	}
	m.FillMissingUVs()

	buf, err := mesh.Pack(m, topo)
	if err != nil {
		return fmt.Errorf("packing %s: %w", input, err)
	}

	outPath := *output
	if outPath == "" {
		outPath = replaceExt(input, ".tmsh")
	}
	f, closeFn, err := createOutput(outPath)
	if err != nil {
		return err
	}
	n, err := buf.WriteTo(f)
	if cerr := closeFn(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}

	logger.Info("packed mesh",
		zap.String("input", input),
		zap.String("output", outPath),
		zap.Int("vertices", buf.Count),
		zap.Stringer("topology", buf.Topology),
		zap.Int64("bytes", n),
	)
	return nil
}

func cmdUnpack(args []string) error {
	fs := flag.NewFlagSet("unpack", flag.ExitOnError)
	fs.Parse(args)

	if fs.NArg() < 1 || fs.NArg() > 2 {
		fmt.Fprintln(os.Stderr, "Usage: objtool unpack <file.tmsh> [output.obj]")
		os.Exit(1)
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer f.Close()

	buf, err := mesh.ReadCompressedBuffer(f)
	if err != nil {
		return fmt.Errorf("reading %s: %w", fs.Arg(0), err)
	}

	m := buf.Unpack()
	fmt.Printf("Buffer:   %s\n", fs.Arg(0))
	fmt.Printf("Vertices: %d\n", buf.Count)
	fmt.Printf("Topology: %s\n", buf.Topology)
	if buf.Count > 0 {
		b := mesh.ComputeBounds(m.Vertices)
		fmt.Printf("Bounds:   min %v max %v\n", b.Min.Array(), b.Max.Array())
	}

	if fs.NArg() == 2 {
		out, closeFn, err := createOutput(fs.Arg(1))
		if err != nil {
			return err
		}
		err = m.WriteOBJ(out)
		if cerr := closeFn(); err == nil {
			err = cerr
		}
		return err
	}
	return nil
}

func cmdNormalize(args []string) error {
	fs := flag.NewFlagSet("normalize", flag.ExitOnError)
	common := addCommonFlags(fs)
	radius := fs.Float64("radius", 2, "Target radius")
	output := fs.String("o", "-", "Output OBJ file (- for stdout)")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: objtool normalize [-radius r] [-o out.obj] <file.obj>")
		os.Exit(1)
	}
	opts, err := common.setup()
	if err != nil {
		return err
	}

	input := fs.Arg(0)
	m, _, err := loadMesh(input, opts)
	if err != nil {
		return err
	}
	if err := mesh.Normalize(m, float32(*radius)); err != nil {
		return fmt.Errorf("normalizing %s: %w", input, err)
	}

	out, closeFn, err := createOutput(*output)
	if err != nil {
		return err
	}
	err = m.WriteOBJ(out)
	if cerr := closeFn(); err == nil {
		err = cerr
	}
	return err
}
