// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package renderer builds what a Vulkan device needs before anything can be
// drawn: the swapchain a negotiated plan describes, its image views, a render
// pass and the graphics pipeline for the triangle model.
package renderer

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	vk "github.com/vulkan-go/vulkan"

	"github.com/devblok/hellovk/core"
	"github.com/devblok/hellovk/device"
	"github.com/devblok/hellovk/model"
)

// NewVulkanRenderer creates the swapchain and the pipeline for a plan.
// Anything created before a failure is destroyed again.
func NewVulkanRenderer(dev vk.Device, surface vk.Surface, plan core.SwapchainPlan, shaders ShaderBox) (*VulkanRenderer, error) {
	sources, err := LoadShaderSources(shaders)
	if err != nil {
		return nil, err
	}

	v := &VulkanRenderer{
		device:  dev,
		surface: surface,
		plan:    plan,
	}

	steps := []func() error{
		v.createSwapchain,
		v.createImageViews,
		v.createRenderPass,
		v.createPipelineLayout,
		v.createPipelineCache,
		func() error { return v.loadShaders(sources) },
		v.createPipeline,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			v.Destroy()
			return nil, err
		}
	}

	log.WithFields(log.Fields{
		"images":      len(v.swapchainImages),
		"extent":      plan.Extent,
		"presentMode": plan.PresentMode,
	}).Info("swapchain and pipeline created")
	return v, nil
}

// VulkanRenderer is a Vulkan API renderer
type VulkanRenderer struct {
	device  vk.Device
	surface vk.Surface
	plan    core.SwapchainPlan

	swapchain           vk.Swapchain
	swapchainImages     []vk.Image
	swapchainImageViews []vk.ImageView

	shaders        []*Shader
	renderPass     vk.RenderPass
	pipelineLayout vk.PipelineLayout
	pipelineCache  vk.PipelineCache
	pipeline       vk.Pipeline
}

// Plan returns the plan the renderer was created from
func (v *VulkanRenderer) Plan() core.SwapchainPlan {
	return v.plan
}

// ImageCount is the number of images the driver created for the swapchain.
// It can be more than the plan asked for.
func (v *VulkanRenderer) ImageCount() int {
	return len(v.swapchainImages)
}

// Pipeline returns the graphics pipeline
func (v *VulkanRenderer) Pipeline() vk.Pipeline {
	return v.pipeline
}

// RenderPass returns the render pass the pipeline was created for
func (v *VulkanRenderer) RenderPass() vk.RenderPass {
	return v.renderPass
}

// swapchainCreateInfo translates a plan for vk.CreateSwapchain
func swapchainCreateInfo(surface vk.Surface, plan core.SwapchainPlan) vk.SwapchainCreateInfo {
	sharingMode := vk.SharingModeExclusive
	if plan.Sharing == core.SharingModeConcurrent {
		sharingMode = vk.SharingModeConcurrent
	}

	return vk.SwapchainCreateInfo{
		SType:                 vk.StructureTypeSwapchainCreateInfo,
		Surface:               surface,
		MinImageCount:         plan.ImageCount,
		ImageFormat:           vk.Format(plan.Format.Format),
		ImageColorSpace:       vk.ColorSpace(plan.Format.ColorSpace),
		ImageExtent:           device.ToExtent(plan.Extent),
		ImageArrayLayers:      1,
		ImageUsage:            vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode:      sharingMode,
		QueueFamilyIndexCount: uint32(len(plan.QueueFamilyIndices)),
		PQueueFamilyIndices:   plan.QueueFamilyIndices,
		PreTransform:          vk.SurfaceTransformFlagBits(plan.PreTransform),
		CompositeAlpha:        vk.CompositeAlphaFlagBits(plan.CompositeAlpha),
		PresentMode:           vk.PresentMode(plan.PresentMode),
		Clipped:               vk.True,
	}
}

func (v *VulkanRenderer) createSwapchain() error {
	scci := swapchainCreateInfo(v.surface, v.plan)

	var swapchain vk.Swapchain
	if err := vk.Error(vk.CreateSwapchain(v.device, &scci, nil, &swapchain)); err != nil {
		return errors.New("vk.CreateSwapchain(): " + err.Error())
	}
	v.swapchain = swapchain

	var numImages uint32
	if err := vk.Error(vk.GetSwapchainImages(v.device, v.swapchain, &numImages, nil)); err != nil {
		return errors.New("vk.GetSwapchainImages(num): " + err.Error())
	}
	v.swapchainImages = make([]vk.Image, numImages)
	if err := vk.Error(vk.GetSwapchainImages(v.device, v.swapchain, &numImages, v.swapchainImages)); err != nil {
		return errors.New("vk.GetSwapchainImages(images): " + err.Error())
	}
	return nil
}

func (v *VulkanRenderer) createImageViews() error {
	for idx, image := range v.swapchainImages {
		ivci := vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    image,
			ViewType: vk.ImageViewType2d,
			Format:   vk.Format(v.plan.Format.Format),
			Components: vk.ComponentMapping{
				R: vk.ComponentSwizzleIdentity,
				G: vk.ComponentSwizzleIdentity,
				B: vk.ComponentSwizzleIdentity,
				A: vk.ComponentSwizzleIdentity,
			},
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
				BaseMipLevel:   0,
				LevelCount:     1,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
		}

		var imageView vk.ImageView
		if err := vk.Error(vk.CreateImageView(v.device, &ivci, nil, &imageView)); err != nil {
			return fmt.Errorf("vk.CreateImageView(%d): %s", idx, err.Error())
		}
		v.swapchainImageViews = append(v.swapchainImageViews, imageView)
	}
	return nil
}

func (v *VulkanRenderer) createRenderPass() error {
	attachments := []vk.AttachmentDescription{{
		Format:         vk.Format(v.plan.Format.Format),
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutPresentSrc,
	}}

	colorAttachmentRef := []vk.AttachmentReference{{
		Attachment: 0,
		Layout:     vk.ImageLayoutColorAttachmentOptimal,
	}}

	subpassDependency := vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		SrcAccessMask: 0,
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentReadBit | vk.AccessColorAttachmentWriteBit),
	}

	subpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: uint32(len(colorAttachmentRef)),
		PColorAttachments:    colorAttachmentRef,
	}

	rpci := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{subpassDependency},
	}

	var renderPass vk.RenderPass
	if err := vk.Error(vk.CreateRenderPass(v.device, &rpci, nil, &renderPass)); err != nil {
		return errors.New("vk.CreateRenderPass(): " + err.Error())
	}
	v.renderPass = renderPass
	return nil
}

// createPipelineLayout creates an empty layout, the triangle
// shaders use no descriptor sets or push constants.
func (v *VulkanRenderer) createPipelineLayout() error {
	plci := vk.PipelineLayoutCreateInfo{
		SType: vk.StructureTypePipelineLayoutCreateInfo,
	}

	var pipelineLayout vk.PipelineLayout
	if err := vk.Error(vk.CreatePipelineLayout(v.device, &plci, nil, &pipelineLayout)); err != nil {
		return errors.New("vk.CreatePipelineLayout(): " + err.Error())
	}
	v.pipelineLayout = pipelineLayout
	return nil
}

func (v *VulkanRenderer) createPipelineCache() error {
	pcci := vk.PipelineCacheCreateInfo{
		SType: vk.StructureTypePipelineCacheCreateInfo,
	}

	var pipelineCache vk.PipelineCache
	if err := vk.Error(vk.CreatePipelineCache(v.device, &pcci, nil, &pipelineCache)); err != nil {
		return errors.New("vk.CreatePipelineCache(): " + err.Error())
	}
	v.pipelineCache = pipelineCache
	return nil
}

func (v *VulkanRenderer) loadShaders(sources []ShaderSource) error {
	for _, source := range sources {
		shader, err := NewVulkanShader(v.device, source)
		if err != nil {
			return err
		}
		log.WithFields(log.Fields{
			"name":  shader.Name(),
			"stage": shader.Stage(),
		}).Debug("shader module created")
		v.shaders = append(v.shaders, shader)
	}
	return nil
}

// viewport covers the whole swapchain image
func viewport(extent core.Extent2D) vk.Viewport {
	return vk.Viewport{
		X:        0,
		Y:        0,
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MinDepth: 0.0,
		MaxDepth: 1.0,
	}
}

func scissor(extent core.Extent2D) vk.Rect2D {
	return vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: device.ToExtent(extent),
	}
}

func (v *VulkanRenderer) createPipeline() error {
	stages := make([]vk.PipelineShaderStageCreateInfo, len(v.shaders))
	for idx, shader := range v.shaders {
		stages[idx] = shader.stageCreateInfo()
	}
	vertexInput := model.VertexInputState()

	gpci := []vk.GraphicsPipelineCreateInfo{{
		SType:             vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:        uint32(len(stages)),
		PStages:           stages,
		PVertexInputState: &vertexInput,
		PInputAssemblyState: &vk.PipelineInputAssemblyStateCreateInfo{
			SType:    vk.StructureTypePipelineInputAssemblyStateCreateInfo,
			Topology: vk.PrimitiveTopologyTriangleList,
		},
		PViewportState: &vk.PipelineViewportStateCreateInfo{
			SType:         vk.StructureTypePipelineViewportStateCreateInfo,
			ViewportCount: 1,
			PViewports:    []vk.Viewport{viewport(v.plan.Extent)},
			ScissorCount:  1,
			PScissors:     []vk.Rect2D{scissor(v.plan.Extent)},
		},
		PRasterizationState: &vk.PipelineRasterizationStateCreateInfo{
			SType:       vk.StructureTypePipelineRasterizationStateCreateInfo,
			PolygonMode: vk.PolygonModeFill,
			CullMode:    vk.CullModeFlags(vk.CullModeBackBit),
			FrontFace:   vk.FrontFaceClockwise,
			LineWidth:   1.0,
		},
		PMultisampleState: &vk.PipelineMultisampleStateCreateInfo{
			SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
			RasterizationSamples: vk.SampleCount1Bit,
			MinSampleShading:     1.0,
		},
		PColorBlendState: &vk.PipelineColorBlendStateCreateInfo{
			SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
			LogicOp:         vk.LogicOpCopy,
			AttachmentCount: 1,
			PAttachments: []vk.PipelineColorBlendAttachmentState{{
				ColorWriteMask: 0xF,
				BlendEnable:    vk.False,
			}},
		},
		Layout:     v.pipelineLayout,
		RenderPass: v.renderPass,
	}}

	pipelines := make([]vk.Pipeline, len(gpci))
	if err := vk.Error(vk.CreateGraphicsPipelines(v.device, v.pipelineCache, uint32(len(gpci)), gpci, nil, pipelines)); err != nil {
		return errors.New("vk.CreateGraphicsPipelines(): " + err.Error())
	}
	v.pipeline = pipelines[0]
	return nil
}

// Destroy waits for the device to idle and destroys everything the
// renderer created, in reverse order. The device itself is left alone.
func (v *VulkanRenderer) Destroy() {
	vk.DeviceWaitIdle(v.device)

	vk.DestroyPipeline(v.device, v.pipeline, nil)
	for _, shader := range v.shaders {
		shader.Destroy(v.device)
	}
	v.shaders = nil
	vk.DestroyPipelineCache(v.device, v.pipelineCache, nil)
	vk.DestroyPipelineLayout(v.device, v.pipelineLayout, nil)
	vk.DestroyRenderPass(v.device, v.renderPass, nil)

	for _, imageView := range v.swapchainImageViews {
		vk.DestroyImageView(v.device, imageView, nil)
	}
	v.swapchainImageViews = nil

	vk.DestroySwapchain(v.device, v.swapchain, nil)
}
