package render

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/mkrall/go-terrain/internal/openglhelper"
	"github.com/mkrall/go-terrain/pkg/stream"
	"github.com/mkrall/go-terrain/pkg/voxel"
	"github.com/mkrall/go-terrain/pkg/worldgen"
)

// MaxQuadsPerChunk is the per-slot mesh budget. Terrain surfaces stay far
// below it; pathological meshes are truncated with a warning.
const MaxQuadsPerChunk = 8192

// Config configures the terrain renderer.
type Config struct {
	Width     int
	Height    int
	Title     string
	Vsync     bool
	Seed      int64
	Radius    int
	MoveSpeed float32
	FOV       float32
	Logger    *slog.Logger
	Trace     stream.TraceSink
}

// Renderer owns the window, the camera, the chunk streamer and the GPU
// mesh pool, and runs the main loop.
type Renderer struct {
	window *openglhelper.Window
	camera *Camera
	shader *openglhelper.Shader
	pool   *ChunkMeshPool

	streamer *stream.Streamer[*voxel.Chunk]
	gen      *worldgen.Generator

	lastFrameTime float64
	deltaTime     float32

	log *slog.Logger
}

// meshingGenerator builds the render mesh on the generation worker so the
// render thread only has to copy finished vertices.
type meshingGenerator struct {
	gen *worldgen.Generator
}

func (m meshingGenerator) Generate(cell stream.Coord) (*voxel.Chunk, error) {
	c, err := m.gen.Generate(cell)
	if err != nil {
		return nil, err
	}
	c.BuildMesh()
	return c, nil
}

// NewRenderer creates the window, GL state and streaming pipeline.
func NewRenderer(cfg Config) (*Renderer, error) {
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Radius < 1 {
		cfg.Radius = 4
	}

	window, err := openglhelper.NewWindow(cfg.Width, cfg.Height, cfg.Title, cfg.Vsync, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	gen := worldgen.New(cfg.Seed, log)

	// Spawn a little above the terrain at the world origin.
	spawnY := float32(gen.HeightAt(0, 0) + 8)
	camera := NewCamera(mgl32.Vec3{0, spawnY, 0})
	camera.UpdateProjectionMatrix(cfg.Width, cfg.Height)
	if cfg.MoveSpeed > 0 {
		camera.SetMoveSpeed(cfg.MoveSpeed)
	}
	if cfg.FOV > 0 {
		camera.SetFOV(cfg.FOV)
	}

	shader, err := openglhelper.NewShader(terrainVertexShader, terrainFragmentShader)
	if err != nil {
		window.Close()
		return nil, fmt.Errorf("terrain shader: %w", err)
	}

	side := 2*cfg.Radius + 1
	pool, err := NewChunkMeshPool(side*side, MaxQuadsPerChunk, log)
	if err != nil {
		shader.Delete()
		window.Close()
		return nil, fmt.Errorf("chunk mesh pool: %w", err)
	}

	r := &Renderer{
		window: window,
		camera: camera,
		shader: shader,
		pool:   pool,
		gen:    gen,
		log:    log,
	}

	r.streamer, err = stream.New(stream.Config[*voxel.Chunk]{
		Radius:    cfg.Radius,
		Center:    stream.Coord{},
		Generator: meshingGenerator{gen: gen},
		Release:   func(c *voxel.Chunk) { c.Release() },
		OnPromote: r.onChunkLoaded,
		OnEvict:   pool.Remove,
		Logger:    log,
		Trace:     cfg.Trace,
	})
	if err != nil {
		pool.Cleanup()
		shader.Delete()
		window.Close()
		return nil, fmt.Errorf("chunk streamer: %w", err)
	}

	window.GLFWWindow().SetKeyCallback(r.keyCallback)
	window.GLFWWindow().SetCursorPosCallback(r.cursorPosCallback)
	window.GLFWWindow().SetScrollCallback(r.scrollCallback)
	window.GLFWWindow().SetFramebufferSizeCallback(r.framebufferSizeCallback)
	window.SetMouseCaptured(true)

	return r, nil
}

func (r *Renderer) onChunkLoaded(cell stream.Coord, c *voxel.Chunk) {
	if c.Mesh == nil || len(c.Mesh.PackedVertices) == 0 {
		return
	}
	if err := r.pool.Upload(cell, c.WorldOrigin(), c.Mesh.PackedVertices); err != nil {
		r.log.Error("uploading chunk mesh", "x", cell.X, "z", cell.Z, "err", err)
	}
}

// cameraCell returns the grid cell the camera currently occupies.
func (r *Renderer) cameraCell() stream.Coord {
	pos := r.camera.Position()
	return stream.Coord{
		X: stream.FloorDiv(int(pos.X()), voxel.ChunkSizeX),
		Z: stream.FloorDiv(int(pos.Z()), voxel.ChunkSizeZ),
	}
}

func (r *Renderer) render() {
	fog := mgl32.Vec3{0.55, 0.70, 0.85}
	r.window.Clear(mgl32.Vec4{fog.X(), fog.Y(), fog.Z(), 1.0})

	r.shader.Use()
	r.shader.SetMat4("view", r.camera.ViewMatrix())
	r.shader.SetMat4("projection", r.camera.ProjectionMatrix())
	r.shader.SetVec3("fogColor", fog)
	r.shader.SetFloat("fogDensity", 0.004)

	r.pool.Draw()
}

// Run drives the main loop until the window closes, then cleans up.
// Must be called on the main OS thread.
func (r *Renderer) Run() {
	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)

	r.lastFrameTime = glfw.GetTime()
	for !r.window.ShouldClose() {
		now := glfw.GetTime()
		r.deltaTime = float32(now - r.lastFrameTime)
		r.lastFrameTime = now

		r.camera.ProcessKeyboardInput(r.deltaTime, r.window)

		r.streamer.SetCenter(r.cameraCell())
		r.streamer.Tick()

		r.render()

		r.window.SwapBuffers()
		r.window.PollEvents()
	}

	r.Cleanup()
}

// Cleanup stops the streamer and releases every GL resource. The streamer
// goes first so its evictions can still reach the live mesh pool.
func (r *Renderer) Cleanup() {
	if r.streamer != nil {
		r.streamer.Close()
		r.streamer = nil
	}
	if r.pool != nil {
		r.pool.Cleanup()
		r.pool = nil
	}
	if r.shader != nil {
		r.shader.Delete()
		r.shader = nil
	}
	if r.window != nil {
		r.window.Close()
		r.window = nil
	}
}

func (r *Renderer) keyCallback(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
	if key == KeyEscape && action == glfw.Press {
		r.window.GLFWWindow().SetShouldClose(true)
	}
	if key == glfw.KeyC && action == glfw.Press {
		r.window.ToggleMouseCaptured()
		r.camera.ResetMouseState()
	}
}

func (r *Renderer) cursorPosCallback(_ *glfw.Window, xpos, ypos float64) {
	if r.window.IsMouseCaptured() {
		r.camera.HandleMouseMovement(xpos, ypos)
	}
}

func (r *Renderer) scrollCallback(_ *glfw.Window, _, yoffset float64) {
	r.camera.HandleMouseScroll(yoffset)
}

func (r *Renderer) framebufferSizeCallback(_ *glfw.Window, width, height int) {
	r.window.OnResize(width, height)
	r.camera.UpdateProjectionMatrix(width, height)
}
