package renderer

import (
	"errors"
	"fmt"
	"maps"
	"runtime"
	"slices"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/model"
)

// PresentMode controls how finished frames are delivered to the display.
type PresentMode int

const (
	// PresentModeUncapped presents immediately, without waiting for vertical sync.
	PresentModeUncapped PresentMode = iota

	// PresentModeVSync waits for vertical sync before presenting.
	PresentModeVSync
)

// clearColor is the background of every frame.
var clearColor = wgpu.Color{R: 0.1, G: 0.1, B: 0.1, A: 1.0}

// alphaBlend composites fragments by their material alpha.
var alphaBlend = wgpu.BlendState{
	Color: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorSrcAlpha,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		Operation: wgpu.BlendOperationAdd,
	},
	Alpha: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		Operation: wgpu.BlendOperationAdd,
	},
}

// gpuPipeline is the device side of a Pipeline.
type gpuPipeline struct {
	render  *wgpu.RenderPipeline
	layouts []*wgpu.BindGroupLayout
	entries [][]wgpu.BindGroupLayoutEntry
}

// gpuMesh holds the vertex and index buffers of one model.
type gpuMesh struct {
	vertex *wgpu.Buffer
	index  *wgpu.Buffer
	count  uint32
}

// drawBindings holds the uniform buffers and bind groups of one draw slot for one pipeline.
// A frame with n draws uses the first n slots, so every draw keeps its own uniforms until
// the frame is submitted.
type drawBindings struct {
	buffers [][]*wgpu.Buffer
	groups  []*wgpu.BindGroup
}

// wgpuRendererBackendImpl is the implementation of the WGPUBackend interface.
type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	logger *zap.Logger

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface

	surfaceFormat        wgpu.TextureFormat
	presentMode          wgpu.PresentMode
	sampleCount          MSAASampleCount
	configured           bool
	msaaTexture          *wgpu.Texture
	msaaTextureView      *wgpu.TextureView
	depthTexture         *wgpu.Texture
	depthTextureView     *wgpu.TextureView
	renderPassDescriptor *wgpu.RenderPassDescriptor

	pipelines map[*Pipeline]*gpuPipeline
	meshes    map[model.Model]*gpuMesh
	slots     []map[*gpuPipeline]*drawBindings

	// frame state between BeginFrame and EndFrame
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
	frameDraws   int
}

// WGPUBackend is a RendererBackend drawing to a window surface through a WebGPU device.
// Pipelines, mesh buffers and uniform buffers are created on first use and kept until
// Release.
type WGPUBackend interface {
	RendererBackend

	// Release frees every GPU object held by the backend. The backend cannot be used
	// afterwards.
	Release()
}

var _ WGPUBackend = &wgpuRendererBackendImpl{}

// NewWGPUBackend creates a WebGPU device for a window surface. The surface is configured
// on the first Resize; frames begun before that are skipped.
//
// Parameters:
//   - surfaceDescriptor: the platform surface of the window, see window.Window
//   - options: functional options to configure the backend
//
// Returns:
//   - WGPUBackend: the newly created backend
//   - error: an error if no adapter or device could be obtained
func NewWGPUBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, options ...WGPUBackendOption) (WGPUBackend, error) {
	if surfaceDescriptor == nil {
		return nil, errors.New("wgpu backend: nil surface descriptor")
	}

	cfg := wgpuBackendConfig{
		logger:      zap.NewNop(),
		presentMode: PresentModeUncapped,
		sampleCount: MSAA4x,
	}
	for _, option := range options {
		option(&cfg)
	}

	// wgpu-native calls must stay on the thread that owns the window
	runtime.LockOSThread()

	b := &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		logger:      cfg.logger,
		instance:    wgpu.CreateInstance(nil),
		presentMode: toWGPUPresentMode(cfg.presentMode),
		sampleCount: cfg.sampleCount,
		pipelines:   make(map[*Pipeline]*gpuPipeline),
		meshes:      make(map[model.Model]*gpuMesh),
	}
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	adapter, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: cfg.forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("wgpu backend: failed to request adapter: %w", err)
	}
	b.adapter = adapter

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "oxy-scene device",
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("wgpu backend: failed to request device: %w", err)
	}
	b.device = device
	b.queue = device.GetQueue()

	return b, nil
}

func (b *wgpuRendererBackendImpl) Type() RendererBackendType {
	return BackendTypeWGPU
}

func (b *wgpuRendererBackendImpl) Resize(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if width <= 0 || height <= 0 {
		return
	}
	if err := b.configureSurface(width, height); err != nil {
		b.configured = false
		b.logger.Error("failed to configure surface", zap.Int("width", width), zap.Int("height", height), zap.Error(err))
		return
	}
	b.configured = true
}

// configureSurface configures the swapchain and rebuilds the multisample and depth
// attachments for a new size. Callers hold b.mu.
func (b *wgpuRendererBackendImpl) configureSurface(width, height int) error {
	capabilities := b.surface.GetCapabilities(b.adapter)
	if len(capabilities.Formats) == 0 || len(capabilities.AlphaModes) == 0 {
		return errors.New("surface reports no formats")
	}
	b.surfaceFormat = capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	b.releaseAttachments()
	count := uint32(b.sampleCount)
	size := wgpu.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1}

	var err error
	if count > 1 {
		// the pass draws into the multisample texture and resolves into the swapchain view
		b.msaaTexture, err = b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label:         "MSAA Texture",
			Size:          size,
			MipLevelCount: 1,
			SampleCount:   count,
			Dimension:     wgpu.TextureDimension2D,
			Format:        b.surfaceFormat,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err != nil {
			return err
		}
		if b.msaaTextureView, err = b.msaaTexture.CreateView(nil); err != nil {
			return err
		}
	}

	b.depthTexture, err = b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Depth Texture",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   count,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return err
	}
	if b.depthTextureView, err = b.depthTexture.CreateView(nil); err != nil {
		return err
	}

	storeOp := wgpu.StoreOpStore
	if count > 1 {
		storeOp = wgpu.StoreOpDiscard
	}
	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       b.msaaTextureView, // nil without MSAA, set per frame
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    storeOp,
			ClearValue: clearColor,
		}},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	}

	// pipelines target the surface format, which may have changed
	for p, gp := range b.pipelines {
		gp.release()
		delete(b.pipelines, p)
	}
	b.releaseSlots()
	return nil
}

func (b *wgpuRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.configured {
		return nil
	}
	if b.frameSurface != nil {
		return errors.New("previous frame not yet presented")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		// outdated or lost swapchains come back on the next Resize
		b.logger.Debug("frame skipped", zap.Error(err))
		return nil
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}
	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	if b.sampleCount > 1 {
		b.renderPassDescriptor.ColorAttachments[0].ResolveTarget = view
	} else {
		b.renderPassDescriptor.ColorAttachments[0].View = view
	}

	b.frameEncoder = encoder
	b.framePass = encoder.BeginRenderPass(b.renderPassDescriptor)
	b.frameSurface = surfaceTexture
	b.frameView = view
	b.frameDraws = 0
	return nil
}

func (b *wgpuRendererBackendImpl) Submit(p *Pipeline, call DrawCall) error {
	if p == nil {
		return errors.New("submit without pipeline")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return nil
	}
	if p.SampleCount != b.sampleCount {
		return fmt.Errorf("pipeline %q uses %d samples, surface uses %d", p.Key, p.SampleCount, b.sampleCount)
	}

	gp, err := b.pipeline(p)
	if err != nil {
		return fmt.Errorf("pipeline %q: %w", p.Key, err)
	}
	mesh, err := b.mesh(call.Geometry)
	if err != nil {
		return fmt.Errorf("mesh %q: %w", call.Geometry.Name(), err)
	}
	bindings, err := b.bindings(b.frameDraws, gp)
	if err != nil {
		return fmt.Errorf("uniforms: %w", err)
	}
	b.frameDraws++

	for g, entries := range gp.entries {
		for i, entry := range entries {
			b.queue.WriteBuffer(bindings.buffers[g][i], 0, uniformBytes(call, g, entry))
		}
	}

	b.framePass.SetPipeline(gp.render)
	for g, group := range bindings.groups {
		b.framePass.SetBindGroup(uint32(g), group, nil)
	}
	b.framePass.SetVertexBuffer(0, mesh.vertex, 0, wgpu.WholeSize)
	b.framePass.SetIndexBuffer(mesh.index, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	b.framePass.DrawIndexed(mesh.count, 1, 0, 0, 0)
	return nil
}

func (b *wgpuRendererBackendImpl) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return nil
	}
	defer b.releaseFrame()

	b.framePass.End()
	commandBuffer, err := b.frameEncoder.Finish(nil)
	if err != nil {
		return err
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	b.surface.Present()
	return nil
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.releaseFrame()
	b.releaseSlots()
	for p, gp := range b.pipelines {
		gp.release()
		delete(b.pipelines, p)
	}
	for m, mesh := range b.meshes {
		mesh.vertex.Release()
		mesh.index.Release()
		delete(b.meshes, m)
	}
	b.releaseAttachments()
	b.configured = false

	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}

// pipeline returns the render pipeline of p, creating it on first use.
func (b *wgpuRendererBackendImpl) pipeline(p *Pipeline) (*gpuPipeline, error) {
	if gp, ok := b.pipelines[p]; ok {
		return gp, nil
	}
	if p.Vertex == nil || p.Fragment == nil {
		return nil, errors.New("both vertex and fragment modules must be set to create a render pipeline")
	}

	// a rebuilt pipeline for the same program replaces the old one
	for old, gp := range b.pipelines {
		if old.Key == p.Key {
			gp.release()
			delete(b.pipelines, old)
			b.dropBindings(gp)
		}
	}

	vs, err := b.device.CreateShaderModule(p.Vertex)
	if err != nil {
		return nil, err
	}
	defer vs.Release()
	fs, err := b.device.CreateShaderModule(p.Fragment)
	if err != nil {
		return nil, err
	}
	defer fs.Release()

	gp := &gpuPipeline{}
	for g, desc := range denseLayouts(p.BindGroupLayouts) {
		layout, err := b.device.CreateBindGroupLayout(&desc)
		if err != nil {
			gp.release()
			return nil, fmt.Errorf("failed to create bind group layout for group %d: %w", g, err)
		}
		gp.layouts = append(gp.layouts, layout)
		gp.entries = append(gp.entries, desc.Entries)
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.Key,
		BindGroupLayouts: gp.layouts,
	})
	if err != nil {
		gp.release()
		return nil, err
	}
	defer pipelineLayout.Release()

	gp.render, err = b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.Key + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: p.VertexEntry,
			Buffers:    []wgpu.VertexBufferLayout{vertexBufferLayout()},
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: p.FragmentEntry,
			Targets: []wgpu.ColorTargetState{{
				Format:    b.surfaceFormat,
				Blend:     &alphaBlend,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: uint32(b.sampleCount),
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		},
	})
	if err != nil {
		gp.release()
		return nil, err
	}

	b.pipelines[p] = gp
	b.logger.Debug("render pipeline created", zap.String("program", p.Key), zap.Int("groups", len(gp.layouts)))
	return gp, nil
}

// mesh returns the buffers of m, uploading them on first use.
func (b *wgpuRendererBackendImpl) mesh(m model.Model) (*gpuMesh, error) {
	if mesh, ok := b.meshes[m]; ok {
		return mesh, nil
	}

	vertexData, indexData := m.VertexData(), m.IndexData()
	if len(vertexData) == 0 || len(indexData) == 0 {
		return nil, errors.New("mesh has no vertices or indices")
	}

	vertex, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: m.Name() + " Vertex Buffer",
		Size:  uint64(len(vertexData)),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	index, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: m.Name() + " Index Buffer",
		Size:  uint64(len(indexData)),
		Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		vertex.Release()
		return nil, err
	}
	b.queue.WriteBuffer(vertex, 0, vertexData)
	b.queue.WriteBuffer(index, 0, indexData)

	mesh := &gpuMesh{vertex: vertex, index: index, count: uint32(m.IndexCount())}
	b.meshes[m] = mesh
	return mesh, nil
}

// bindings returns the uniform buffers and bind groups of draw slot for gp, creating them
// on first use.
func (b *wgpuRendererBackendImpl) bindings(slot int, gp *gpuPipeline) (*drawBindings, error) {
	for len(b.slots) <= slot {
		b.slots = append(b.slots, make(map[*gpuPipeline]*drawBindings))
	}
	if db, ok := b.slots[slot][gp]; ok {
		return db, nil
	}

	db := &drawBindings{}
	for g, layout := range gp.layouts {
		buffers := make([]*wgpu.Buffer, 0, len(gp.entries[g]))
		entries := make([]wgpu.BindGroupEntry, 0, len(gp.entries[g]))
		for _, entry := range gp.entries[g] {
			buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
				Label: fmt.Sprintf("group %d binding %d", g, entry.Binding),
				Size:  entry.Buffer.MinBindingSize,
				Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
			})
			if err != nil {
				db.release()
				return nil, err
			}
			buffers = append(buffers, buf)
			entries = append(entries, wgpu.BindGroupEntry{
				Binding: entry.Binding,
				Buffer:  buf,
				Size:    wgpu.WholeSize,
			})
		}
		db.buffers = append(db.buffers, buffers)

		group, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:   fmt.Sprintf("group %d", g),
			Layout:  layout,
			Entries: entries,
		})
		if err != nil {
			db.release()
			return nil, err
		}
		db.groups = append(db.groups, group)
	}

	b.slots[slot][gp] = db
	return db, nil
}

// dropBindings releases the draw slots created for gp.
func (b *wgpuRendererBackendImpl) dropBindings(gp *gpuPipeline) {
	for _, slot := range b.slots {
		if db, ok := slot[gp]; ok {
			db.release()
			delete(slot, gp)
		}
	}
}

func (b *wgpuRendererBackendImpl) releaseSlots() {
	for _, slot := range b.slots {
		for _, db := range slot {
			db.release()
		}
	}
	b.slots = nil
}

func (b *wgpuRendererBackendImpl) releaseFrame() {
	if b.frameEncoder != nil {
		b.frameEncoder.Release()
		b.frameEncoder = nil
	}
	b.framePass = nil
	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
}

func (b *wgpuRendererBackendImpl) releaseAttachments() {
	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
		b.msaaTextureView = nil
	}
	if b.msaaTexture != nil {
		b.msaaTexture.Release()
		b.msaaTexture = nil
	}
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
		b.depthTextureView = nil
	}
	if b.depthTexture != nil {
		b.depthTexture.Release()
		b.depthTexture = nil
	}
}

func (gp *gpuPipeline) release() {
	if gp.render != nil {
		gp.render.Release()
		gp.render = nil
	}
	for _, layout := range gp.layouts {
		layout.Release()
	}
	gp.layouts = nil
}

func (db *drawBindings) release() {
	for _, group := range db.groups {
		group.Release()
	}
	for _, buffers := range db.buffers {
		for _, buf := range buffers {
			buf.Release()
		}
	}
	db.groups, db.buffers = nil, nil
}

// denseLayouts orders bind group layouts by group index. Gaps, such as the vars group of a
// program without vars, are filled with empty layouts so the pipeline layout stays indexable
// by group.
//
// Parameters:
//   - layouts: descriptors keyed by group index
//
// Returns:
//   - []wgpu.BindGroupLayoutDescriptor: one descriptor per group from 0 to the highest index
func denseLayouts(layouts map[int]wgpu.BindGroupLayoutDescriptor) []wgpu.BindGroupLayoutDescriptor {
	groups := slices.Sorted(maps.Keys(layouts))
	if len(groups) == 0 || groups[0] < 0 {
		return nil
	}
	out := make([]wgpu.BindGroupLayoutDescriptor, groups[len(groups)-1]+1)
	for g := range out {
		if desc, ok := layouts[g]; ok {
			out[g] = desc
		} else {
			out[g] = wgpu.BindGroupLayoutDescriptor{Label: fmt.Sprintf("empty group %d", g)}
		}
	}
	return out
}

// uniformBytes packs the block bound at group and entry, zero-padded to the entry's minimum
// binding size.
func uniformBytes(call DrawCall, group int, entry wgpu.BindGroupLayoutEntry) []byte {
	data := common.SliceToBytes(call.Uniform(group, entry.Binding))
	if size := int(entry.Buffer.MinBindingSize); len(data) < size {
		data = append(data, make([]byte, size-len(data))...)
	}
	return data
}

// vertexBufferLayout describes model.GPUVertex: position at location 0 and normal at
// location 1.
func vertexBufferLayout() wgpu.VertexBufferLayout {
	var v model.GPUVertex
	return wgpu.VertexBufferLayout{
		ArrayStride: uint64(v.Size()),
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
		},
	}
}

func toWGPUPresentMode(mode PresentMode) wgpu.PresentMode {
	switch mode {
	case PresentModeVSync:
		return wgpu.PresentModeFifo
	default:
		return wgpu.PresentModeImmediate
	}
}
