// Package formats provides parsers for text mesh source formats.
// OBJ parser for the v/vt/vn/f subset used by the mesh pipeline.
package formats

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/trimesh/pkg/math"
)

// FaceTopology tracks the corner count established by the first face of a parse.
type FaceTopology int

const (
	FacesUnset     FaceTopology = 0 // No face seen yet
	FacesTriangles FaceTopology = 3 // First face had 3 corners
	FacesQuads     FaceTopology = 4 // First face had 4 corners
)

// String returns a human-readable topology name.
func (t FaceTopology) String() string {
	switch t {
	case FacesUnset:
		return "Unset"
	case FacesTriangles:
		return "Triangles"
	case FacesQuads:
		return "Quads"
	default:
		return fmt.Sprintf("Unknown(%d)", int(t))
	}
}

// AttributeKind identifies which attribute pool a face index refers to.
type AttributeKind int

const (
	AttributeNone AttributeKind = iota
	AttributeVertex
	AttributeUV
	AttributeNormal
)

// String returns the attribute name used in diagnostics.
func (k AttributeKind) String() string {
	switch k {
	case AttributeNone:
		return "none"
	case AttributeVertex:
		return "vertex"
	case AttributeUV:
		return "uv"
	case AttributeNormal:
		return "normal"
	default:
		return fmt.Sprintf("attribute(%d)", int(k))
	}
}

// DiagnosticKind categorizes a recoverable parse problem.
type DiagnosticKind int

const (
	UnrecognizedLine DiagnosticKind = iota
	IndexOutOfRange
	TopologyMismatch
)

// String returns a human-readable category name.
func (k DiagnosticKind) String() string {
	switch k {
	case UnrecognizedLine:
		return "UnrecognizedLine"
	case IndexOutOfRange:
		return "IndexOutOfRange"
	case TopologyMismatch:
		return "TopologyMismatch"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Diagnostic reports a problem with a single source line.
// Parsing always continues after a diagnostic.
type Diagnostic struct {
	Kind      DiagnosticKind
	Attribute AttributeKind // Set for IndexOutOfRange only
	Line      int           // 1-based source line number
	Text      string        // Raw line text
}

// String formats the diagnostic as "line N: <condition>: [raw text]".
func (d Diagnostic) String() string {
	var cond string
	switch d.Kind {
	case UnrecognizedLine:
		cond = "ignoring unrecognized line"
	case IndexOutOfRange:
		cond = d.Attribute.String() + " index out of bounds"
	case TopologyMismatch:
		cond = "mixed quads and triangles"
	default:
		cond = d.Kind.String()
	}
	return fmt.Sprintf("line %d: %s: [%s]", d.Line, cond, d.Text)
}

// IndexPolicy decides what happens to a face with an out-of-range reference.
// Every policy reports a diagnostic; they differ only in whether the face is kept.
type IndexPolicy int

const (
	// PolicyLegacy drops quads and keeps triangles.
	PolicyLegacy IndexPolicy = iota
	// PolicyLenient keeps every face.
	PolicyLenient
	// PolicyStrict drops every face.
	PolicyStrict
)

// String returns the policy name accepted by ParseIndexPolicy.
func (p IndexPolicy) String() string {
	switch p {
	case PolicyLegacy:
		return "legacy"
	case PolicyLenient:
		return "lenient"
	case PolicyStrict:
		return "strict"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParseIndexPolicy converts a policy name to an IndexPolicy.
func ParseIndexPolicy(s string) (IndexPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "legacy":
		return PolicyLegacy, nil
	case "lenient":
		return PolicyLenient, nil
	case "strict":
		return PolicyStrict, nil
	default:
		return PolicyLegacy, fmt.Errorf("unknown index policy %q", s)
	}
}

// dropsFace reports whether a face with the given corner count is discarded
// when one of its references is out of range.
func (p IndexPolicy) dropsFace(corners int) bool {
	switch p {
	case PolicyStrict:
		return true
	case PolicyLenient:
		return false
	default:
		return corners == 4
	}
}

// Corner is one vertex reference of a face. Indices are 1-based as written in the
// source; UV is 0 when the face has no texture coordinate references.
type Corner struct {
	Vertex int
	UV     int
	Normal int
}

// Face is a triangle or quad as read from one "f" line.
type Face struct {
	Corners []Corner // 3 or 4 corners
	Line    int      // Source line number
}

// IsQuad reports whether the face has four corners.
func (f Face) IsQuad() bool {
	return len(f.Corners) == 4
}

// OBJ holds the raw attribute pools and face records of a parsed source.
type OBJ struct {
	Positions []math.Vec3 // "v" lines in file order
	Normals   []math.Vec3 // "vn" lines in file order
	UVs       []math.Vec2 // "vt" lines in file order
	Faces     []Face      // Accepted faces in file order

	// Topology is the corner count of the first accepted face.
	Topology FaceTopology
	// HasUVs is cleared by the first accepted face without UV references
	// and stays false for the rest of the parse.
	HasUVs bool

	Diagnostics []Diagnostic
}

// OBJStats summarizes a parsed source.
type OBJStats struct {
	Positions   int
	Normals     int
	UVs         int
	Triangles   int
	Quads       int
	Diagnostics map[DiagnosticKind]int
}

// Stats counts pool sizes, faces per corner count, and diagnostics per kind.
func (o *OBJ) Stats() OBJStats {
	s := OBJStats{
		Positions:   len(o.Positions),
		Normals:     len(o.Normals),
		UVs:         len(o.UVs),
		Diagnostics: make(map[DiagnosticKind]int),
	}
	for _, f := range o.Faces {
		if f.IsQuad() {
			s.Quads++
		} else {
			s.Triangles++
		}
	}
	for _, d := range o.Diagnostics {
		s.Diagnostics[d.Kind]++
	}
	return s
}

// OutputVertexCount returns the number of vertices resolution will produce.
func (o *OBJ) OutputVertexCount() int {
	n := 0
	for _, f := range o.Faces {
		if f.IsQuad() {
			n += 6
		} else {
			n += 3
		}
	}
	return n
}

// ParseOption configures ParseOBJ.
type ParseOption func(*parseOptions)

type parseOptions struct {
	policy IndexPolicy
	onDiag func(Diagnostic)
}

// WithIndexPolicy selects how faces with out-of-range references are handled.
func WithIndexPolicy(p IndexPolicy) ParseOption {
	return func(o *parseOptions) {
		o.policy = p
	}
}

// WithDiagnosticFunc registers a callback invoked for every diagnostic as it is
// produced. Diagnostics are still collected on OBJ.Diagnostics.
func WithDiagnosticFunc(fn func(Diagnostic)) ParseOption {
	return func(o *parseOptions) {
		o.onDiag = fn
	}
}

// objParser is the accumulation state of a single parse.
type objParser struct {
	obj  *OBJ
	opts parseOptions
}

// ParseOBJ parses OBJ text from a byte slice.
// Malformed lines never abort the parse; they are reported as diagnostics.
func ParseOBJ(data []byte, opts ...ParseOption) (*OBJ, error) {
	p := &objParser{
		obj: &OBJ{HasUVs: true},
	}
	for _, o := range opts {
		o(&p.opts)
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	// A single line may be as long as the whole input.
	scanner.Buffer(make([]byte, 0, 64*1024), max(len(data)+1, 64*1024))

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		p.parseLine(lineNum, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning OBJ line %d: %w", lineNum+1, err)
	}

	return p.obj, nil
}

// ParseOBJReader reads r to completion and parses the result.
func ParseOBJReader(r io.Reader, opts ...ParseOption) (*OBJ, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading OBJ data: %w", err)
	}
	return ParseOBJ(data, opts...)
}

// ParseOBJFile parses an OBJ file from disk.
func ParseOBJFile(path string, opts ...ParseOption) (*OBJ, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading OBJ file: %w", err)
	}
	return ParseOBJ(data, opts...)
}

// parseLine classifies one line. Patterns are tried in a fixed order and a line
// must match a pattern's field count exactly.
func (p *objParser) parseLine(lineNum int, text string) {
	text = strings.TrimRight(text, "\r")
	fields := strings.Fields(text)

	if len(fields) > 0 {
		switch fields[0] {
		case "v":
			if v, ok := parseVec3(fields); ok {
				p.obj.Positions = append(p.obj.Positions, v)
				return
			}
		case "vt":
			if v, ok := parseVec2(fields); ok {
				p.obj.UVs = append(p.obj.UVs, v)
				return
			}
		case "vn":
			if v, ok := parseVec3(fields); ok {
				p.obj.Normals = append(p.obj.Normals, v)
				return
			}
		case "f":
			if corners, ok := parseCorners(fields, 4, true); ok {
				p.addFace(lineNum, text, corners, true)
				return
			}
			if corners, ok := parseCorners(fields, 3, true); ok {
				p.addFace(lineNum, text, corners, true)
				return
			}
			if corners, ok := parseCorners(fields, 3, false); ok {
				p.addFace(lineNum, text, corners, false)
				return
			}
		}
	}

	p.report(Diagnostic{Kind: UnrecognizedLine, Line: lineNum, Text: text})
}

// addFace validates a recognized face against the pools accumulated so far
// and records it unless the index policy drops it.
func (p *objParser) addFace(lineNum int, text string, corners []Corner, withUV bool) {
	topo := FaceTopology(len(corners))
	if p.obj.Topology != FacesUnset && p.obj.Topology != topo {
		p.report(Diagnostic{Kind: TopologyMismatch, Line: lineNum, Text: text})
	}

	checks := []struct {
		kind AttributeKind
		size int
		ref  func(Corner) int
	}{
		{AttributeVertex, len(p.obj.Positions), func(c Corner) int { return c.Vertex }},
		{AttributeNormal, len(p.obj.Normals), func(c Corner) int { return c.Normal }},
		{AttributeUV, len(p.obj.UVs), func(c Corner) int { return c.UV }},
	}

	drop := p.opts.policy.dropsFace(len(corners))
	for _, chk := range checks {
		if chk.kind == AttributeUV && !withUV {
			continue
		}
		for _, c := range corners {
			idx := chk.ref(c)
			if idx >= 1 && idx <= chk.size {
				continue
			}
			p.report(Diagnostic{Kind: IndexOutOfRange, Attribute: chk.kind, Line: lineNum, Text: text})
			if drop {
				return
			}
			break
		}
	}

	// Only emitted faces fix the topology tag or clear the UV mark.
	if p.obj.Topology == FacesUnset {
		p.obj.Topology = topo
	}
	if !withUV {
		p.obj.HasUVs = false
	}
	p.obj.Faces = append(p.obj.Faces, Face{Corners: corners, Line: lineNum})
}

func (p *objParser) report(d Diagnostic) {
	p.obj.Diagnostics = append(p.obj.Diagnostics, d)
	if p.opts.onDiag != nil {
		p.opts.onDiag(d)
	}
}

// parseVec3 parses "<keyword> x y z".
func parseVec3(fields []string) (math.Vec3, bool) {
	if len(fields) != 4 {
		return math.Vec3{}, false
	}
	var xyz [3]float32
	for i := range xyz {
		f, err := strconv.ParseFloat(fields[i+1], 32)
		if err != nil {
			return math.Vec3{}, false
		}
		xyz[i] = float32(f)
	}
	return math.Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]}, true
}

// parseVec2 parses "<keyword> u v".
func parseVec2(fields []string) (math.Vec2, bool) {
	if len(fields) != 3 {
		return math.Vec2{}, false
	}
	u, err := strconv.ParseFloat(fields[1], 32)
	if err != nil {
		return math.Vec2{}, false
	}
	v, err := strconv.ParseFloat(fields[2], 32)
	if err != nil {
		return math.Vec2{}, false
	}
	return math.Vec2{X: float32(u), Y: float32(v)}, true
}

// parseCorners parses "f c1 c2 ... cN" where each corner is "v/t/n" when
// withUV is set and "v//n" otherwise.
func parseCorners(fields []string, n int, withUV bool) ([]Corner, bool) {
	if len(fields) != n+1 {
		return nil, false
	}
	corners := make([]Corner, n)
	for i := range corners {
		c, ok := parseCorner(fields[i+1], withUV)
		if !ok {
			return nil, false
		}
		corners[i] = c
	}
	return corners, true
}

func parseCorner(tok string, withUV bool) (Corner, bool) {
	parts := strings.Split(tok, "/")
	if len(parts) != 3 {
		return Corner{}, false
	}

	v, err := strconv.Atoi(parts[0])
	if err != nil {
		return Corner{}, false
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil {
		return Corner{}, false
	}

	if !withUV {
		if parts[1] != "" {
			return Corner{}, false
		}
		return Corner{Vertex: v, Normal: n}, true
	}

	t, err := strconv.Atoi(parts[1])
	if err != nil {
		return Corner{}, false
	}
	return Corner{Vertex: v, UV: t, Normal: n}, true
}
