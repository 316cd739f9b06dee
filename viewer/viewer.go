package viewer

import (
	"fmt"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// Scene is anything a Viewer can render: a frame callback that appends
// its own wireframe vertices using the Collect* helpers in this package.
type Scene interface {
	// Append adds this frame's wireframe vertices to verts and returns the
	// extended slice.
	Append(verts []Vertex) []Vertex
}

// SceneFunc adapts a plain function to the Scene interface.
type SceneFunc func(verts []Vertex) []Vertex

func (f SceneFunc) Append(verts []Vertex) []Vertex { return f(verts) }

// Viewer owns a window, renderer, and fly camera, and drives the
// mouse-look/WASD input loop tracked frame to frame the way an
// InputManager tracks deltas for an editor.
type Viewer struct {
	Window   *Window
	Renderer *Renderer
	Camera   *FlyCamera

	lastMouseX, lastMouseY float64
	firstFrame             bool
}

// NewViewer creates a window and renderer and a default fly camera sized
// to the window's aspect ratio.
func NewViewer(cfg WindowConfig) (*Viewer, error) {
	win, err := NewWindow(cfg)
	if err != nil {
		return nil, err
	}
	r, err := NewRenderer()
	if err != nil {
		win.Destroy()
		return nil, fmt.Errorf("viewer: %w", err)
	}
	return &Viewer{
		Window:     win,
		Renderer:   r,
		Camera:     NewFlyCamera(float32(cfg.Width) / float32(cfg.Height)),
		firstFrame: true,
	}, nil
}

// Destroy releases the renderer and window.
func (v *Viewer) Destroy() {
	v.Renderer.Destroy()
	v.Window.Destroy()
}

// ShouldClose reports whether the user has requested the window close.
func (v *Viewer) ShouldClose() bool { return v.Window.ShouldClose() }

// RunFrame polls input, advances the camera, clears and redraws the scene,
// and swaps buffers. dt is the frame's elapsed time in seconds, supplied by
// the caller rather than measured internally since this package avoids
// wall-clock calls so callers can drive it deterministically in tests.
func (v *Viewer) RunFrame(dt float32, scene Scene) {
	v.Window.PollEvents()
	v.pollInput(dt)

	width, height := v.Window.Width, v.Window.Height
	if height > 0 {
		v.Camera.AspectRatio = float32(width) / float32(height)
	}
	v.Renderer.SetViewport(width, height)
	v.Renderer.BeginFrame()

	var verts []Vertex
	verts = scene.Append(verts)
	v.Renderer.DrawLines(verts, v.Camera.ViewProjection())

	v.Window.SwapBuffers()
}

func (v *Viewer) pollInput(dt float32) {
	x, y := v.Window.GetCursorPos()
	if v.firstFrame {
		v.lastMouseX, v.lastMouseY = x, y
		v.firstFrame = false
	}
	dx, dy := x-v.lastMouseX, y-v.lastMouseY
	v.lastMouseX, v.lastMouseY = x, y

	if v.Window.Handle.GetMouseButton(glfw.MouseButtonRight) == glfw.Press {
		v.Camera.Look(float32(dx), float32(dy))
	}

	var forward, right, up float32
	if v.Window.IsKeyPressed(glfw.KeyW) {
		forward++
	}
	if v.Window.IsKeyPressed(glfw.KeyS) {
		forward--
	}
	if v.Window.IsKeyPressed(glfw.KeyD) {
		right++
	}
	if v.Window.IsKeyPressed(glfw.KeyA) {
		right--
	}
	if v.Window.IsKeyPressed(glfw.KeyE) {
		up++
	}
	if v.Window.IsKeyPressed(glfw.KeyQ) {
		up--
	}
	v.Camera.Move(forward, right, up, dt)
}
