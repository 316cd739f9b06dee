// Package viewer is a debug wireframe visualizer for BVH, TLAS, and
// kd-tree node bounds: an OpenGL/GLFW window that draws the box hierarchy
// of a scene so its shape can be inspected interactively, with a fly
// camera for navigation. It never touches the acceleration structures it
// draws — it only reads node bounds through the accessors those packages
// already expose for testing and traversal.
package viewer

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	runtime.LockOSThread()
}

// Window owns a GLFW window with a current OpenGL 4.1 core context.
type Window struct {
	Handle *glfw.Window
	Width  int
	Height int
}

// WindowConfig configures window creation.
type WindowConfig struct {
	Width  int
	Height int
	Title  string
}

// DefaultWindowConfig returns sane defaults for a debug viewer window.
func DefaultWindowConfig() WindowConfig {
	return WindowConfig{Width: 1280, Height: 720, Title: "raybvh viewer"}
}

// NewWindow creates a GLFW window with an OpenGL context current on the
// calling goroutine's OS thread.
func NewWindow(cfg WindowConfig) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("viewer: glfw init: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	handle, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("viewer: create window: %w", err)
	}
	handle.MakeContextCurrent()
	glfw.SwapInterval(1)

	w := &Window{Handle: handle, Width: cfg.Width, Height: cfg.Height}
	handle.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.Width, w.Height = width, height
	})
	return w, nil
}

func (w *Window) ShouldClose() bool { return w.Handle.ShouldClose() }

func (w *Window) PollEvents() { glfw.PollEvents() }

func (w *Window) SwapBuffers() { w.Handle.SwapBuffers() }

func (w *Window) IsKeyPressed(key glfw.Key) bool {
	return w.Handle.GetKey(key) == glfw.Press
}

func (w *Window) GetCursorPos() (float64, float64) { return w.Handle.GetCursorPos() }

func (w *Window) Destroy() {
	w.Handle.Destroy()
	glfw.Terminate()
}
