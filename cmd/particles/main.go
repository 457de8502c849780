// Command particles is a small stress demo for the persistent triple
// buffer: a drifting point field rewritten by the CPU every frame while
// the GPU draws the previous section.
package main

import (
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"runtime"
	"unsafe"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/mkrall/go-terrain/internal/openglhelper"
	"github.com/mkrall/go-terrain/pkg/render"
)

const vertexShader = `#version 460 core

layout (location = 0) in vec3 position;
layout (location = 1) in vec3 color;

uniform mat4 view;
uniform mat4 projection;

out vec3 fragColor;

void main() {
    fragColor = color;
    gl_Position = projection * view * vec4(position, 1.0);
    gl_PointSize = 3.0;
}
`

const fragmentShader = `#version 460 core

in vec3 fragColor;
out vec4 outColor;

void main() {
    outColor = vec4(fragColor, 1.0);
}
`

// x, y, z, r, g, b
const floatsPerParticle = 6

type field struct {
	positions  []mgl32.Vec3
	velocities []mgl32.Vec3
	colors     []mgl32.Vec3
	bounds     float32
}

func newField(count int, bounds float32, rng *rand.Rand) *field {
	f := &field{
		positions:  make([]mgl32.Vec3, count),
		velocities: make([]mgl32.Vec3, count),
		colors:     make([]mgl32.Vec3, count),
		bounds:     bounds,
	}
	for i := range f.positions {
		f.positions[i] = mgl32.Vec3{
			(rng.Float32()*2 - 1) * bounds,
			(rng.Float32()*2 - 1) * bounds,
			(rng.Float32()*2 - 1) * bounds,
		}
		f.velocities[i] = mgl32.Vec3{
			(rng.Float32()*2 - 1) * 4,
			(rng.Float32()*2 - 1) * 4,
			(rng.Float32()*2 - 1) * 4,
		}
		f.colors[i] = mgl32.Vec3{
			rng.Float32()*0.5 + 0.5,
			rng.Float32()*0.5 + 0.5,
			rng.Float32()*0.5 + 0.5,
		}
	}
	return f
}

// step advances positions and bounces them off the walls of the volume.
func (f *field) step(dt float32) {
	for i := range f.positions {
		p := f.positions[i].Add(f.velocities[i].Mul(dt))
		for axis := 0; axis < 3; axis++ {
			if p[axis] > f.bounds || p[axis] < -f.bounds {
				f.velocities[i][axis] = -f.velocities[i][axis]
				p[axis] = mgl32.Clamp(p[axis], -f.bounds, f.bounds)
			}
		}
		f.positions[i] = p
	}
}

// writeTo packs the field into one triple buffer section.
func (f *field) writeTo(dst []float32) {
	for i := range f.positions {
		base := i * floatsPerParticle
		dst[base+0] = f.positions[i].X()
		dst[base+1] = f.positions[i].Y()
		dst[base+2] = f.positions[i].Z()
		dst[base+3] = f.colors[i].X()
		dst[base+4] = f.colors[i].Y()
		dst[base+5] = f.colors[i].Z()
	}
}

func init() {
	runtime.LockOSThread()
}

func main() {
	count := flag.Int("n", 200000, "number of particles")
	seed := flag.Int64("seed", 42, "field seed")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	window, err := openglhelper.NewWindow(1280, 720, "particles", true, log)
	if err != nil {
		log.Error("creating window", "err", err)
		os.Exit(1)
	}
	defer window.Close()

	shader, err := openglhelper.NewShader(vertexShader, fragmentShader)
	if err != nil {
		log.Error("compiling shader", "err", err)
		os.Exit(1)
	}
	defer shader.Delete()

	sectionSize := *count * floatsPerParticle * 4
	tb, err := openglhelper.NewTripleBuffer(gl.ARRAY_BUFFER, sectionSize, 3)
	if err != nil {
		log.Error("allocating triple buffer", "err", err)
		os.Exit(1)
	}
	defer tb.Cleanup()

	vao := openglhelper.NewVAO()
	defer vao.Delete()
	vao.Bind()
	tb.Buffer.Bind()
	stride := int32(floatsPerParticle * 4)
	vao.SetVertexAttribPointer(0, 3, gl.FLOAT, false, stride, 0)
	vao.SetVertexAttribPointer(1, 3, gl.FLOAT, false, stride, 3*4)

	mapped := unsafe.Slice((*float32)(tb.Buffer.MappedPointer()), *count*floatsPerParticle*tb.NumBuffers)

	camera := render.NewCamera(mgl32.Vec3{0, 0, 90})
	camera.UpdateProjectionMatrix(1280, 720)
	camera.LookAt(mgl32.Vec3{0, 0, 0})

	window.GLFWWindow().SetFramebufferSizeCallback(func(_ *glfw.Window, w, h int) {
		window.OnResize(w, h)
		camera.UpdateProjectionMatrix(w, h)
	})
	window.GLFWWindow().SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			window.GLFWWindow().SetShouldClose(true)
		}
	})

	particles := newField(*count, 40, rand.New(rand.NewSource(*seed)))
	gl.Enable(gl.PROGRAM_POINT_SIZE)

	log.Info("running particle demo", "count", *count, "seed", *seed)

	lastTime := glfw.GetTime()
	for !window.ShouldClose() {
		now := glfw.GetTime()
		dt := float32(now - lastTime)
		lastTime = now
		if dt > 0.1 {
			dt = 0.1
		}

		camera.ProcessKeyboardInput(dt, window)
		particles.step(dt)

		if !tb.WaitForSync() {
			log.Warn("triple buffer sync timed out")
		}
		offset := tb.CurrentOffsetBytes() / 4
		particles.writeTo(mapped[offset : offset+*count*floatsPerParticle])

		window.Clear(mgl32.Vec4{0.03, 0.03, 0.08, 1.0})
		shader.Use()
		shader.SetMat4("view", camera.ViewMatrix())
		shader.SetMat4("projection", camera.ProjectionMatrix())

		vao.Bind()
		first := int32(offset / floatsPerParticle)
		gl.DrawArrays(gl.POINTS, first, int32(*count))

		tb.CreateFenceSync()
		tb.Advance()

		window.SwapBuffers()
		window.PollEvents()
	}
}
