//go:build !tinygo && cgo

package gshadeaux

import (
	"bytes"
	"fmt"
	"runtime"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/soypat/glgl/v4.6-core/glgl"
	"github.com/soypat/gshade/glbuild"
)

func init() {
	// GLFW event handling must run on the main OS thread.
	runtime.LockOSThread()
}

const uiVertexShader = `#version 460
in vec2 aPos;
out vec2 vTexCoord;
void main() {
    vTexCoord = aPos * 0.5 + 0.5;
    gl_Position = vec4(aPos, 0.0, 1.0);
}
` + "\x00"

type orbitState struct {
	yaw, pitch float32
	camDist    float32
	dragging   bool
	lastX      float64
	lastY      float64
}

func ui(s glbuild.ColorShader, cfg UIConfig) error {
	err := glfw.Init()
	if err != nil {
		return err
	}
	defer glfw.Terminate()
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 6)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	window, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		return err
	}
	window.MakeContextCurrent()
	err = gl.Init()
	if err != nil {
		return err
	}

	var frag bytes.Buffer
	frag.WriteString("#version 460\nprecision highp float;\n\n")
	prog := glbuild.NewDefaultProgrammer()
	_, err = prog.WriteFragVisualizer(&frag, s)
	if err != nil {
		return err
	}
	frag.WriteByte(0)
	fragSrc := frag.String()
	glprog, err := glgl.CompileProgram(glgl.ShaderSource{
		Vertex:   uiVertexShader,
		Fragment: fragSrc,
	})
	if err != nil {
		return fmt.Errorf("%s\n\n%w", fragSrc, err)
	}
	glprog.Bind()

	// Full-screen quad as a triangle strip.
	quad := []float32{-1, -1, 1, -1, -1, 1, 1, 1}
	var vao, vbo uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(quad)*4, gl.Ptr(quad), gl.STATIC_DRAW)
	posAttrib, err := glprog.AttribLocation("aPos\x00")
	if err != nil {
		return err
	}
	gl.EnableVertexAttribArray(posAttrib)
	gl.VertexAttribPointer(posAttrib, 2, gl.FLOAT, false, 0, gl.PtrOffset(0))

	timeLoc, err := glprog.UniformLocation("uTime\x00")
	if err != nil {
		return err
	}
	resLoc, err := glprog.UniformLocation("uResolution\x00")
	if err != nil {
		return err
	}
	distLoc, err := glprog.UniformLocation("uCamDist\x00")
	if err != nil {
		return err
	}
	yawLoc, err := glprog.UniformLocation("uYaw\x00")
	if err != nil {
		return err
	}
	pitchLoc, err := glprog.UniformLocation("uPitch\x00")
	if err != nil {
		return err
	}

	state := &orbitState{yaw: 0.6, pitch: 0.5, camDist: 4}
	window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		if button != glfw.MouseButtonLeft {
			return
		}
		state.dragging = action == glfw.Press
		state.lastX, state.lastY = w.GetCursorPos()
	})
	window.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		if !state.dragging {
			return
		}
		const sensitivity = 0.005
		state.yaw -= float32(x-state.lastX) * sensitivity
		state.pitch += float32(y-state.lastY) * sensitivity
		const maxPitch = 1.55
		if state.pitch > maxPitch {
			state.pitch = maxPitch
		} else if state.pitch < -maxPitch {
			state.pitch = -maxPitch
		}
		state.lastX, state.lastY = x, y
	})
	window.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		state.camDist -= float32(yoff) * 0.3
		if state.camDist < 2 {
			state.camDist = 2
		} else if state.camDist > 20 {
			state.camDist = 20
		}
	})

	gl.ClearColor(0.027, 0.122, 0.235, 1)
	for !window.ShouldClose() {
		glfw.PollEvents()
		w, h := window.GetFramebufferSize()
		gl.Viewport(0, 0, int32(w), int32(h))
		gl.Clear(gl.COLOR_BUFFER_BIT)
		gl.Uniform1f(timeLoc, float32(glfw.GetTime()))
		gl.Uniform2f(resLoc, float32(w), float32(h))
		gl.Uniform1f(distLoc, state.camDist)
		gl.Uniform1f(yawLoc, state.yaw)
		gl.Uniform1f(pitchLoc, state.pitch)
		gl.BindVertexArray(vao)
		gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
		window.SwapBuffers()
	}
	return nil
}
