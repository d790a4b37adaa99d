// Package grid maps flat parallel task identifiers onto logical kernel coordinates.
//
// A kernel launch covers a rectangular iteration space. Parallel runtimes round the
// number of tasks up to a multiple of the workgroup size, so some task identifiers
// fall outside the space; the index functions report those with ok == false and the
// kernel body must do nothing for them.
package grid

// TaskIndex2D maps task onto (row, col) of a height x width iteration space.
// Columns vary fastest. ok is false when task lies outside the space.
func TaskIndex2D(height, width, task int) (row, col int, ok bool) {
	if task < 0 || height <= 0 || width <= 0 {
		return 0, 0, false
	}
	row = task / width
	if row >= height {
		return 0, 0, false
	}
	return row, task % width, true
}

// TaskIndex3D maps task onto (obj, row, col) of a depth x height x width iteration space.
// Columns vary fastest, then rows. ok is false when task lies outside the space.
func TaskIndex3D(depth, height, width, task int) (obj, row, col int, ok bool) {
	if task < 0 || depth <= 0 || height <= 0 || width <= 0 {
		return 0, 0, 0, false
	}
	plane := height * width
	obj = task / plane
	if obj >= depth {
		return 0, 0, 0, false
	}
	rest := task % plane
	return obj, rest / width, rest % width, true
}

// Launch describes a one-dimensional launch of tasks grouped into workgroups.
type Launch struct {
	tasks         int
	workgroupSize int
}

// NewLaunch returns a launch covering tasks task identifiers with the given workgroup size.
// A non-positive workgroup size is treated as 1.
func NewLaunch(tasks, workgroupSize int) Launch {
	if workgroupSize <= 0 {
		workgroupSize = 1
	}
	if tasks < 0 {
		tasks = 0
	}
	return Launch{tasks: tasks, workgroupSize: workgroupSize}
}

// Tasks returns the number of tasks the kernel needs.
func (l Launch) Tasks() int {
	return l.tasks
}

// WorkgroupSize returns the number of tasks per workgroup.
func (l Launch) WorkgroupSize() int {
	return l.workgroupSize
}

// Workgroups returns ceil(Tasks / WorkgroupSize).
func (l Launch) Workgroups() int {
	return (l.tasks + l.workgroupSize - 1) / l.workgroupSize
}

// Workgroup returns the half-open range of task identifiers run by workgroup i.
// The last workgroup may extend past Tasks.
func (l Launch) Workgroup(i int) (start, end int) {
	start = i * l.workgroupSize
	return start, start + l.workgroupSize
}

// Blocks returns the number of blocks of size block needed to cover n items.
func Blocks(n, block int) int {
	return (n + block - 1) / block
}
