// Package app owns the viewer window: it creates the GL context, routes input
// into the orbit controls and runs the per-frame loop.
package app

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"volumeslices/internal/logging"
	"volumeslices/pkg/camera"
	"volumeslices/pkg/config"
	"volumeslices/pkg/graphics"
	"volumeslices/pkg/graphics/opengl"
	"volumeslices/pkg/remote"
	"volumeslices/pkg/slicestack"
)

// App is a running viewer.
type App struct {
	cfg *config.Config

	window   *glfw.Window
	gfx      *opengl.Backend
	shader   graphics.Shader
	engine   *slicestack.Engine
	cam      *camera.Camera
	controls *camera.Controls
	remote   *remote.Server

	width, height int
}

// New opens the window, compiles the slice shaders and loads the configured
// dataset. It locks the calling goroutine to its OS thread, which must then
// call Run and Close.
func New(cfg *config.Config) (*App, error) {
	if cfg.Dataset.Path == "" {
		return nil, fmt.Errorf("%w: set dataset.path or -dataset", slicestack.ErrNoDataset)
	}

	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	window.MakeContextCurrent()
	if cfg.Window.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	a := &App{cfg: cfg, window: window}
	if err := a.init(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) init() error {
	gfx, err := opengl.New()
	if err != nil {
		return err
	}
	a.gfx = gfx
	logging.Logger().Info("graphics context ready", "version", gfx.Version())

	shader, err := gfx.CreateShader(graphics.SliceVertexShader, graphics.SlicePixelShader)
	if err != nil {
		return err
	}
	a.shader = shader

	engine, err := slicestack.NewEngine(gfx, shader, slicestack.WithModelScale(float32(a.cfg.Render.ModelScale)))
	if err != nil {
		return err
	}
	a.engine = engine
	if err := engine.LoadDataset(gfx, a.cfg.Dataset.Path); err != nil {
		return err
	}

	home := camera.NewOrbitState(
		a.cfg.Camera.Azimuth*math.Pi/180,
		a.cfg.Camera.Altitude*math.Pi/180,
		a.cfg.Camera.Distance)
	a.controls = camera.NewControls(home, a.cfg.Camera.RotateSpeed, a.cfg.Camera.ZoomSpeed)

	a.resize(a.window.GetFramebufferSize())
	if a.cam == nil {
		a.resize(a.cfg.Window.Width, a.cfg.Window.Height)
	}
	a.installCallbacks()

	if a.cfg.Remote.Enabled {
		a.remote = remote.NewServer(a.cfg.Remote.Address)
		if err := a.remote.Start(); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) installCallbacks() {
	a.window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		a.resize(width, height)
	})

	a.window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		switch key {
		case glfw.KeyEscape:
			w.SetShouldClose(true)
		case glfw.KeyR:
			a.controls.Reset()
		}
	})

	a.window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		if button != glfw.MouseButtonLeft {
			return
		}
		switch action {
		case glfw.Press:
			a.controls.BeginDrag(w.GetCursorPos())
		case glfw.Release:
			a.controls.EndDrag()
		}
	})

	a.window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		a.controls.MoveCursor(xpos, ypos)
	})

	a.window.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		a.controls.Scroll(yoff)
	})
}

// resize rebuilds the camera for the new aspect ratio. A minimized window
// reports a zero size and keeps the previous camera.
func (a *App) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	a.width, a.height = width, height
	a.gfx.Viewport(width, height)

	cc := a.cfg.Camera
	a.cam = camera.New(mgl32.Vec3{}, mgl32.DegToRad(float32(cc.FieldOfView)),
		float32(width)/float32(height), float32(cc.Near), float32(cc.Far))
}

// Run renders frames until the window is closed or a frame fails.
func (a *App) Run() error {
	frames := 0
	start := time.Now()

	for !a.window.ShouldClose() {
		if a.remote != nil {
			a.remote.Drain(func(cmd remote.Command) {
				cmd.Apply(&a.controls.Orbit, a.controls.Home)
			})
		}
		a.controls.Orbit.Apply(a.cam)

		a.gfx.Clear(a.cfg.Render.ClearColor)
		if err := a.engine.Render(a.gfx, a.cam); err != nil {
			return fmt.Errorf("frame %d: %w", frames, err)
		}

		a.window.SwapBuffers()
		glfw.PollEvents()
		frames++
	}

	if elapsed := time.Since(start); elapsed > 0 {
		logging.Logger().Info("viewer closed", "frames", frames, "fps", float64(frames)/elapsed.Seconds())
	}
	return nil
}

// Close releases GPU resources, stops the remote server and destroys the window.
func (a *App) Close() error {
	var errs []error
	if a.remote != nil {
		errs = append(errs, a.remote.Close())
	}
	if a.engine != nil && a.gfx != nil {
		a.engine.DeleteResources(a.gfx)
	}
	if a.shader != nil {
		a.shader.Delete()
	}
	if a.window != nil {
		a.window.Destroy()
		a.window = nil
	}
	glfw.Terminate()
	return errors.Join(errs...)
}
