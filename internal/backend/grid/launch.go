package grid

import (
	taskgrid "github.com/born-ml/mathengine/internal/grid"
	"github.com/born-ml/mathengine/internal/parallel"
)

// run launches body over tasks task identifiers, padded to the workgroup size.
func (g *GridBackend) run(tasks int, body func(task int)) {
	parallel.Launch(taskgrid.NewLaunch(tasks, g.workgroupSize), body, g.cfg)
}

// run2D launches body over a height x width iteration space.
func (g *GridBackend) run2D(height, width int, body func(row, col int)) {
	g.run(height*width, func(task int) {
		row, col, ok := taskgrid.TaskIndex2D(height, width, task)
		if !ok {
			return
		}
		body(row, col)
	})
}

// run3D launches body over a depth x height x width iteration space.
func (g *GridBackend) run3D(depth, height, width int, body func(obj, row, col int)) {
	g.run(depth*height*width, func(task int) {
		obj, row, col, ok := taskgrid.TaskIndex3D(depth, height, width, task)
		if !ok {
			return
		}
		body(obj, row, col)
	})
}
