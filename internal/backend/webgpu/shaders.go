//go:build windows

package webgpu

// WGSL compute shaders for the operation catalogue.
// Using string constants instead of embed for simplicity.
//
// Every shader runs one invocation per task over a flat task range. The dispatch may
// be spread over x and y, so the flat task index is rebuilt from the workgroup id.
// Padding invocations past params.tasks return without writing.

// taskPrelude is shared by all shaders.
const taskPrelude = `
fn task_index(wid: vec3<u32>, nwg: vec3<u32>, lid: vec3<u32>) -> u32 {
    return (wid.y * nwg.x + wid.x) * 256u + lid.x;
}
`

// philoxPrelude is Philox4x32-10. WGSL has no 64-bit integers, so mulhilo builds
// the 64-bit product from 16-bit halves.
const philoxPrelude = `
fn mulhilo(a: u32, b: u32) -> vec2<u32> {
    let a_lo = a & 0xFFFFu;
    let a_hi = a >> 16u;
    let b_lo = b & 0xFFFFu;
    let b_hi = b >> 16u;

    let lo_lo = a_lo * b_lo;
    let hi_lo = a_hi * b_lo;
    let lo_hi = a_lo * b_hi;
    let hi_hi = a_hi * b_hi;

    let mid = (lo_lo >> 16u) + (hi_lo & 0xFFFFu) + lo_hi;
    let hi = hi_hi + (hi_lo >> 16u) + (mid >> 16u);
    let lo = (mid << 16u) | (lo_lo & 0xFFFFu);
    return vec2<u32>(hi, lo);
}

fn philox_round(ctr: vec4<u32>, key: vec2<u32>) -> vec4<u32> {
    let p0 = mulhilo(0xD2511F53u, ctr.x);
    let p1 = mulhilo(0xCD9E8D57u, ctr.z);
    return vec4<u32>(p1.x ^ ctr.y ^ key.x, p1.y, p0.x ^ ctr.w ^ key.y, p0.y);
}

// philox returns block number block of the stream with the given key and upper counter words.
fn philox(block: u32, key_in: vec2<u32>, ctr_hi: vec2<u32>) -> vec4<u32> {
    var ctr = vec4<u32>(block, 0u, ctr_hi.x, ctr_hi.y);
    var key = key_in;
    ctr = philox_round(ctr, key);
    for (var r = 1u; r < 10u; r = r + 1u) {
        key = key + vec2<u32>(0x9E3779B9u, 0xBB67AE85u);
        ctr = philox_round(ctr, key);
    }
    return ctr;
}
`

// gemmShader computes a batched product with arbitrary operand strides:
// result[b][i][j] (=|+=) sum_k a[b*a_batch + i*a_row + k*a_inner] * s[b*s_batch + k*s_inner + j*s_col].
const gemmShader = taskPrelude + `
struct Params {
    height: u32,
    width: u32,
    inner: u32,
    tasks: u32,
    a_batch: u32,
    a_row: u32,
    a_inner: u32,
    accumulate: u32,
    s_batch: u32,
    s_inner: u32,
    s_col: u32,
    _pad: u32,
}

@group(0) @binding(0) var<storage, read> a: array<f32>;
@group(0) @binding(1) var<storage, read> s: array<f32>;
@group(0) @binding(2) var<storage, read_write> result: array<f32>;
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(workgroup_id) wid: vec3<u32>,
        @builtin(num_workgroups) nwg: vec3<u32>,
        @builtin(local_invocation_id) lid: vec3<u32>) {
    let task = task_index(wid, nwg, lid);
    if (task >= params.tasks) {
        return;
    }

    let j = task % params.width;
    let rest = task / params.width;
    let i = rest % params.height;
    let b = rest / params.height;

    let a_base = b * params.a_batch + i * params.a_row;
    let s_base = b * params.s_batch + j * params.s_col;
    var sum = 0.0;
    for (var k = 0u; k < params.inner; k = k + 1u) {
        sum = sum + a[a_base + k * params.a_inner] * s[s_base + k * params.s_inner];
    }

    if (params.accumulate != 0u) {
        result[task] = result[task] + sum;
    } else {
        result[task] = sum;
    }
}
`

// setRowsShader copies vector into every row: result[r][c] = vector[c].
const setRowsShader = taskPrelude + `
struct Params {
    width: u32,
    tasks: u32,
}

@group(0) @binding(0) var<storage, read> vec_in: array<f32>;
@group(0) @binding(1) var<storage, read_write> result: array<f32>;
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(workgroup_id) wid: vec3<u32>,
        @builtin(num_workgroups) nwg: vec3<u32>,
        @builtin(local_invocation_id) lid: vec3<u32>) {
    let task = task_index(wid, nwg, lid);
    if (task >= params.tasks) {
        return;
    }
    result[task] = vec_in[task % params.width];
}
`

// addRowsShader adds vector to every row: result[r][c] = matrix[r][c] + vector[c].
const addRowsShader = taskPrelude + `
struct Params {
    width: u32,
    tasks: u32,
}

@group(0) @binding(0) var<storage, read> mat_in: array<f32>;
@group(0) @binding(1) var<storage, read> vec_in: array<f32>;
@group(0) @binding(2) var<storage, read_write> result: array<f32>;
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(workgroup_id) wid: vec3<u32>,
        @builtin(num_workgroups) nwg: vec3<u32>,
        @builtin(local_invocation_id) lid: vec3<u32>) {
    let task = task_index(wid, nwg, lid);
    if (task >= params.tasks) {
        return;
    }
    result[task] = mat_in[task] + vec_in[task % params.width];
}
`

// fillShader sets every element to a constant.
const fillShader = taskPrelude + `
struct Params {
    tasks: u32,
    value: f32,
}

@group(0) @binding(0) var<storage, read_write> result: array<f32>;
@group(0) @binding(1) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(workgroup_id) wid: vec3<u32>,
        @builtin(num_workgroups) nwg: vec3<u32>,
        @builtin(local_invocation_id) lid: vec3<u32>) {
    let task = task_index(wid, nwg, lid);
    if (task >= params.tasks) {
        return;
    }
    result[task] = params.value;
}
`

// scaleShader multiplies every element by a constant.
const scaleShader = taskPrelude + `
struct Params {
    tasks: u32,
    multiplier: f32,
}

@group(0) @binding(0) var<storage, read> first: array<f32>;
@group(0) @binding(1) var<storage, read_write> result: array<f32>;
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(workgroup_id) wid: vec3<u32>,
        @builtin(num_workgroups) nwg: vec3<u32>,
        @builtin(local_invocation_id) lid: vec3<u32>) {
    let task = task_index(wid, nwg, lid);
    if (task >= params.tasks) {
        return;
    }
    result[task] = first[task] * params.multiplier;
}
`

// binaryShaderHead is completed with the statement combining a and b.
const binaryShaderHead = taskPrelude + `
struct Params {
    tasks: u32,
}

@group(0) @binding(0) var<storage, read> a: array<f32>;
@group(0) @binding(1) var<storage, read> b: array<f32>;
@group(0) @binding(2) var<storage, read_write> result: array<f32>;
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(workgroup_id) wid: vec3<u32>,
        @builtin(num_workgroups) nwg: vec3<u32>,
        @builtin(local_invocation_id) lid: vec3<u32>) {
    let task = task_index(wid, nwg, lid);
    if (task >= params.tasks) {
        return;
    }
`

// addShader performs element-wise addition: result = a + b.
const addShader = binaryShaderHead + `
    result[task] = a[task] + b[task];
}
`

// mulShader performs element-wise multiplication: result = a * b.
const mulShader = binaryShaderHead + `
    result[task] = a[task] * b[task];
}
`

// matrixDropoutShader runs one task per generator block of one row. The block index
// only depends on the column, so every row applies the same mask.
const matrixDropoutShader = taskPrelude + philoxPrelude + `
struct Params {
    width: u32,
    blocks: u32,
    tasks: u32,
    threshold: u32,
    key: vec2<u32>,
    ctr_hi: vec2<u32>,
    forward_rate: f32,
}

@group(0) @binding(0) var<storage, read> first: array<f32>;
@group(0) @binding(1) var<storage, read_write> result: array<f32>;
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(workgroup_id) wid: vec3<u32>,
        @builtin(num_workgroups) nwg: vec3<u32>,
        @builtin(local_invocation_id) lid: vec3<u32>) {
    let task = task_index(wid, nwg, lid);
    if (task >= params.tasks) {
        return;
    }

    let row = task / params.blocks;
    let block = task % params.blocks;
    let generated = philox(block, params.key, params.ctr_hi);

    let col = block * 4u;
    let base = row * params.width + col;
    for (var j = 0u; j < 4u && col + j < params.width; j = j + 1u) {
        let value = first[base + j];
        result[base + j] = select(0.0, value / params.forward_rate, generated[j] <= params.threshold);
    }
}
`

// spatialDropoutShader runs one task per element of the obj x rows x mask_size space.
// The trailing obj_size % mask_size elements of each object are never touched.
const spatialDropoutShader = taskPrelude + philoxPrelude + `
struct Params {
    obj_size: u32,
    mask_count: u32,
    mask_size: u32,
    rows: u32,
    key: vec2<u32>,
    ctr_hi: vec2<u32>,
    tasks: u32,
    threshold: u32,
    forward_rate: f32,
    _pad: u32,
}

@group(0) @binding(0) var<storage, read> src: array<f32>;
@group(0) @binding(1) var<storage, read_write> result: array<f32>;
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(workgroup_id) wid: vec3<u32>,
        @builtin(num_workgroups) nwg: vec3<u32>,
        @builtin(local_invocation_id) lid: vec3<u32>) {
    let task = task_index(wid, nwg, lid);
    if (task >= params.tasks) {
        return;
    }

    let col = task % params.mask_size;
    let rest = task / params.mask_size;
    let row = rest % params.rows;
    let obj = rest / params.rows;

    let position = (obj % params.mask_count) * params.mask_size + col;
    let generated = philox(position / 4u, params.key, params.ctr_hi);

    let index = obj * params.obj_size + row * params.mask_size + col;
    result[index] = select(0.0, src[index] / params.forward_rate, generated[position % 4u] <= params.threshold);
}
`
