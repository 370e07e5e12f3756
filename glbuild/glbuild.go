package glbuild

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
)

const VersionStr = "#version 430\n"

// Shader stores information for automatically generating color shader
// pipelines and evaluating them correctly on a GPU.
type Shader interface {
	// AppendShaderName appends the name of the GL shader function
	// to the buffer and returns the result. It should be unique to that shader.
	AppendShaderName(b []byte) []byte
	// AppendShaderBody appends the body of the shader function to the
	// buffer and returns the result.
	AppendShaderBody(b []byte) []byte
	// AppendShaderObjects appends "objects" (read as data) needed to
	// evaluate the shader correctly. See [ShaderObject].
	AppendShaderObjects(objs []ShaderObject) []ShaderObject
}

// ColorShader can create fragment shading source code for an arbitrary
// surface material. The GL function signature of a ColorShader is
//
//	vec4 name(vec3 p, vec3 n, vec2 uv, float t)
//
// where p is world position, n the surface normal, uv the surface
// parametrization and t the externally advanced animation time.
type ColorShader interface {
	Shader
	// ForEachChild iterates over the ColorShader's direct ColorShader children.
	// Unary operations have one child i.e: Gain. Binary operations have two
	// children i.e: Mix.
	ForEachChild(userData any, fn func(userData any, s *ColorShader) error) error
}

// ShaderObject is a handle to auxiliary GL source needed to evaluate a
// [Shader] correctly, such as a shared noise function definition.
type ShaderObject struct {
	// NamePtr is a pointer to the name of the function inside of the [Shader].
	// This lets the programmer edit the name if a naming conflict is found
	// before generating the shader bodies.
	NamePtr []byte

	funcSource []byte
}

// MakeShaderFunction creates a function [ShaderObject] from GL source code.
// The first declaration in shaderDef must be the function.
func MakeShaderFunction(shaderDef []byte) (sf ShaderObject, err error) {
	shaderDef = bytes.TrimSpace(shaderDef)
	fnNameEnd := bytes.IndexByte(shaderDef, '(')
	fnNameStart := bytes.IndexByte(shaderDef, ' ')
	if fnNameEnd < 0 || fnNameStart < 0 || fnNameStart > fnNameEnd {
		return ShaderObject{}, errors.New("unable to parse function name")
	}
	name := bytes.TrimSpace(shaderDef[fnNameStart:fnNameEnd])
	if len(name) == 0 {
		return ShaderObject{}, errors.New("empty function name")
	}
	sf = ShaderObject{
		NamePtr:    name,
		funcSource: shaderDef,
	}
	return sf, nil
}

func (obj ShaderObject) IsFunction() bool { return len(obj.funcSource) > 0 }

func (obj ShaderObject) Validate() error {
	if len(obj.NamePtr) == 0 {
		return errors.New("shader object zero-length name")
	} else if len(obj.funcSource) == 0 {
		return errors.New("shader object missing function source")
	}
	return nil
}

// Programmer implements shader generation logic for Shader type.
type Programmer struct {
	scratchNodes  []Shader
	scratch       []byte
	computeHeader []byte
	objsScratch   []ShaderObject
	// names maps shader names to body hashes for checking duplicates.
	names map[uint64]uint64
	// Invocations size in X (local group size) to give each compute work group.
	invocX int
}

var defaultComputeHeader = []byte("#shader compute\n" + VersionStr)

// NewDefaultProgrammer returns a Programmer with reasonable default parameters
// for use with the glgl package on the local machine.
func NewDefaultProgrammer() *Programmer {
	return &Programmer{
		scratchNodes:  make([]Shader, 16),
		scratch:       make([]byte, 1024),
		computeHeader: defaultComputeHeader,
		names:         make(map[uint64]uint64),
		invocX:        32,
	}
}

// SetComputeInvocations sets the work group local-sizes. x*y*z must be less
// than maximum number of invocations.
func (p *Programmer) SetComputeInvocations(x, y, z int) {
	if y != 1 || z != 1 {
		panic("unsupported")
	} else if x < 1 {
		panic("zero or negative X invocation size")
	}
	p.invocX = x
}

// ComputeInvocations returns the worker group invocation size in x y and z.
func (p *Programmer) ComputeInvocations() (int, int, int) {
	return p.invocX, 1, 1
}

// WriteComputeColors creates the bare bones I/O compute program for
// evaluating fragment colors and writes it to the writer. Fragment inputs and
// color output are bound as image units 0..3. The animation time is bound as
// the uTime uniform.
func (p *Programmer) WriteComputeColors(w io.Writer, obj ColorShader) (int, error) {
	baseName, nodes, err := ParseAppendNodes(p.scratchNodes[:0], obj)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(p.computeHeader)
	if err != nil {
		return n, err
	}
	ngot, err := p.writeShaders(w, nodes)
	n += ngot
	if err != nil {
		return n, err
	}
	ngot, err = fmt.Fprintf(w, `
layout(local_size_x = %d, local_size_y = 1, local_size_z = 1) in;

// Input: fragment positions, normals and UVs at which to evaluate color.
layout(rgba32f, binding = 0) uniform readonly image2D in_positions;
layout(rgba32f, binding = 1) uniform readonly image2D in_normals;
layout(rg32f, binding = 2) uniform readonly image2D in_uvs;
// Output: shaded RGBA colors. Maps to fragment input buffers.
layout(rgba32f, binding = 3) uniform writeonly image2D out_colors;

uniform float uTime;

void main() {
	int idx = int( gl_GlobalInvocationID.x );

	vec3 p = imageLoad(in_positions, ivec2(idx,0)).xyz;
	vec3 n = imageLoad(in_normals, ivec2(idx,0)).xyz;
	vec2 uv = imageLoad(in_uvs, ivec2(idx,0)).xy;
	imageStore(out_colors, ivec2(idx,0), %s(p, n, uv, uTime));
}
`, p.invocX, baseName)
	n += ngot
	return n, err
}

//go:embed visualizer_footer.tmpl
var visualizerFooter []byte

// WriteFragVisualizer generates a GL fragment shader that shades an orbiting
// view of a unit cube with the argument material. The output source pairs with
// a full-screen-quad vertex shader and is driven by the uTime, uResolution,
// uCamDist, uYaw and uPitch uniforms.
func (p *Programmer) WriteFragVisualizer(w io.Writer, obj ColorShader) (n int, err error) {
	baseName, n, err := p.WriteShaderDecl(w, obj)
	if err != nil {
		return n, err
	}
	ngot, err := w.Write([]byte("\nvec4 material(vec3 p, vec3 n, vec2 uv, float t) { return " + baseName + "(p, n, uv, t); }\n\n"))
	n += ngot
	if err != nil {
		return n, err
	}
	ngot, err = w.Write(visualizerFooter)
	n += ngot
	return n, err
}

// WriteShaderDecl writes the material shader function declarations and
// returns the top-level material function name.
func (p *Programmer) WriteShaderDecl(w io.Writer, s ColorShader) (baseName string, n int, err error) {
	baseName, nodes, err := ParseAppendNodes(p.scratchNodes[:0], s)
	if err != nil {
		return "", 0, err
	}
	n, err = p.writeShaders(w, nodes)
	if err != nil {
		return "", n, err
	}
	return baseName, n, nil
}

func (p *Programmer) writeShaders(w io.Writer, nodes []Shader) (n int, err error) {
	clear(p.names)
	p.scratch = p.scratch[:0]
	p.objsScratch = p.objsScratch[:0]
	objIdx := 0
	for i := len(nodes) - 1; i >= 0; i-- {
		// Start by generating all shared shader function objects.
		node := nodes[i]
		p.objsScratch = node.AppendShaderObjects(p.objsScratch)
		newObjs := p.objsScratch[objIdx:]
	OBJWRITE:
		for i := range newObjs {
			obj := &newObjs[i]
			err := obj.Validate()
			if err != nil {
				return n, fmt.Errorf("invalid shader object %q of %T: %w", obj.NamePtr, node, err)
			}
			nameHash := hash(obj.NamePtr, 0)
			_, nameConflict := p.names[nameHash]
			if nameConflict {
				oldObjs := p.objsScratch[:objIdx]
				for _, old := range oldObjs {
					if nameHash != hash(old.NamePtr, 0) {
						continue
					}
					if bytes.Equal(obj.funcSource, old.funcSource) {
						continue OBJWRITE // Skip this function, is duplicate.
					}
					break
				}
				return n, fmt.Errorf("conflicting shader function name %q of %T", obj.NamePtr, node)
			}
			p.names[nameHash] = nameHash
			p.scratch = append(p.scratch, '\n')
			p.scratch = append(p.scratch, obj.funcSource...)
			p.scratch = append(p.scratch, '\n')
		}
		objIdx += len(newObjs)
	}

	if len(p.scratch) > 0 {
		// Write shared function declarations if any.
		ngot, err := w.Write(p.scratch)
		n += ngot
		if err != nil {
			return n, err
		}
	}

	for i := len(nodes) - 1; i >= 0; i-- {
		node := nodes[i]
		var name, body []byte
		p.scratch, name, body = AppendShaderSource(p.scratch[:0], node)
		nameHash := hash(name, 0)
		bodyHash := hash(body, nameHash) // Body hash mixes name as well.
		gotBodyHash, nameConflict := p.names[nameHash]
		if nameConflict {
			// Name already exists in tree, check if bodies are identical.
			if bodyHash == gotBodyHash {
				continue // Shader already written and is identical, skip.
			}
			return n, fmt.Errorf("duplicate %T shader name %q with distinct body", node, name)
		}
		p.names[nameHash] = bodyHash
		ngot, err := w.Write(p.scratch)
		n += ngot
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// ParseAppendNodes parses the shader object tree and appends all nodes in
// breadth-first order to the dst Shader argument buffer and returns the result.
func ParseAppendNodes(dst []Shader, root Shader) (baseName string, nodes []Shader, err error) {
	if root == nil {
		return "", nil, errors.New("nil shader object")
	}
	baseName = string(root.AppendShaderName([]byte{}))
	if baseName == "" {
		return "", nil, errors.New("empty shader name")
	}
	dst, err = AppendAllNodes(dst, root)
	if err != nil {
		return "", nil, err
	}
	return baseName, dst, nil
}

// AppendAllNodes BFS iterates over all of root's descendants and appends all
// nodes found to dst.
//
// To generate shaders one must iterate over nodes in reverse order to ensure
// the first iterated nodes are the nodes with no dependencies on other nodes.
func AppendAllNodes(dst []Shader, root Shader) ([]Shader, error) {
	var userData any
	cs, ok := root.(ColorShader)
	if !ok {
		return nil, fmt.Errorf("found shader %T that does not implement ColorShader", root)
	}
	children := []ColorShader{cs}
	nextChild := 0
	nilChild := errors.New("got nil child in AppendAllNodes")
	for len(children[nextChild:]) > 0 {
		newChildren := children[nextChild:]
		for _, obj := range newChildren {
			nextChild++
			err := obj.ForEachChild(userData, func(userData any, s *ColorShader) error {
				if s == nil || *s == nil {
					return nilChild
				}
				children = append(children, *s)
				return nil
			})
			if err != nil {
				return nil, err
			}
		}
	}
	for _, c := range children {
		dst = append(dst, c)
	}
	return dst, nil
}

// AppendShaderSource appends the GL code of a single shader to the dst byte
// buffer. If dst's capacity is grown during the writing the buffer with
// augmented capacity is returned. Name and body byte slices pointing into the
// result buffer are also returned for convenience.
func AppendShaderSource(dst []byte, s Shader) (result, name, body []byte) {
	dst = append(dst, "vec4 "...)
	nameStart := len(dst)
	dst = s.AppendShaderName(dst)
	nameEnd := len(dst)
	dst = append(dst, "(vec3 p, vec3 n, vec2 uv, float t){\n"...)
	bodyStart := len(dst)
	dst = s.AppendShaderBody(dst)
	bodyEnd := len(dst)
	dst = append(dst, "\n}\n"...)
	return dst, dst[nameStart:nameEnd], dst[bodyStart:bodyEnd]
}

// fnv-1a over b mixed with seed.
func hash(b []byte, seed uint64) uint64 {
	const prime = 0x00000100000001b3
	h := seed ^ 0xcbf29ce484222325
	for _, c := range b {
		h ^= uint64(c)
		h *= prime
	}
	return h
}

const decimalDigits = 9

// AppendFloat appends the float32 v to b in a GL-source friendly
// representation. neg replaces the minus sign character and decimal replaces
// the decimal point, which permits embedding floats in shader function names.
func AppendFloat(b []byte, neg, decimal byte, v float32) []byte {
	start := len(b)
	b = strconv.AppendFloat(b, float64(v), 'f', decimalDigits, 32)
	idx := bytes.IndexByte(b[start:], '.')
	if decimal != '.' && idx >= 0 {
		b[start+idx] = decimal
	}
	if b[start] == '-' {
		b[start] = neg
	}
	// Finally trim zeroes.
	end := len(b)
	for i := len(b) - 1; idx >= 0 && i > idx+start && b[i] == '0'; i-- {
		end--
	}
	return b[:end]
}

func AppendFloats(b []byte, sep, neg, decimal byte, s ...float32) []byte {
	for i, v := range s {
		b = AppendFloat(b, neg, decimal, v)
		if sep != 0 && i != len(s)-1 {
			b = append(b, sep)
		}
	}
	return b
}

func AppendFloatDecl(b []byte, floatVarname string, v float32) []byte {
	b = append(b, "float "...)
	b = append(b, floatVarname...)
	b = append(b, '=')
	b = AppendFloat(b, '-', '.', v)
	b = append(b, ';', '\n')
	return b
}

func AppendVec2Decl(b []byte, vec2Varname string, v ms2.Vec) []byte {
	b = append(b, "vec2 "...)
	b = append(b, vec2Varname...)
	b = append(b, "=vec2("...)
	arr := v.Array()
	b = AppendFloats(b, ',', '-', '.', arr[:]...)
	b = append(b, ')', ';', '\n')
	return b
}

func AppendVec3Decl(b []byte, vec3Varname string, v ms3.Vec) []byte {
	b = append(b, "vec3 "...)
	b = append(b, vec3Varname...)
	b = append(b, "=vec3("...)
	arr := v.Array()
	b = AppendFloats(b, ',', '-', '.', arr[:]...)
	b = append(b, ')', ';', '\n')
	return b
}

// AppendColorCallDecl declares a vec4 variable assigned from evaluating the
// argument shader with the ambient fragment arguments.
//
//	vec4 <varname>=<shader name>(p, n, uv, t);
func AppendColorCallDecl(b []byte, vec4Varname string, s Shader) []byte {
	b = append(b, "vec4 "...)
	b = append(b, vec4Varname...)
	b = append(b, '=')
	b = s.AppendShaderName(b)
	b = append(b, "(p, n, uv, t);\n"...)
	return b
}
