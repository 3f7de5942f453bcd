// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package core negotiates a rendering setup with a graphics backend.
// Given the adapters a backend exposes and a presentation surface, it picks
// the first adapter that can render and present, resolves which queue families
// serve which role and selects the swapchain parameters to create with.
// Every value produced here is immutable; a new negotiation replaces an old one.
package core

import "math"

// Adapter is an opaque handle to a physical rendering device.
// Only the Backend that produced it knows what is inside.
type Adapter interface {
	// Name is a human readable device name, used for logging
	Name() string
}

// Surface is a backend specific presentation target bound to a window.
type Surface interface{}

// Backend is the graphics API the negotiator queries.
// Every call is synchronous and is made at most once per negotiation step.
type Backend interface {
	// EnumerateAdapters returns physical devices in the order
	// the graphics API reports them
	EnumerateAdapters() ([]Adapter, error)

	// QueueFamilies returns queue family descriptors ordered by index
	QueueFamilies(Adapter) ([]QueueFamily, error)

	// SupportsPresent reports whether the family can present to the surface
	SupportsPresent(adapter Adapter, familyIndex uint32, surface Surface) (bool, error)

	// Extensions returns the device extension names the adapter supports
	Extensions(Adapter) ([]string, error)

	SurfaceCapabilities(Adapter, Surface) (SurfaceCapabilities, error)
	SurfaceFormats(Adapter, Surface) ([]SurfaceFormat, error)
	SurfacePresentModes(Adapter, Surface) ([]PresentMode, error)
}

// QueueFamily describes a group of queues sharing capabilities.
type QueueFamily struct {
	Index      uint32
	QueueCount uint32
	Graphics   bool
}

// Extent2D is a two dimensional image size in pixels.
type Extent2D struct {
	Width  uint32
	Height uint32
}

// UndefinedExtent is reported as the current extent by surfaces whose
// size is decided by the swapchain rather than by the window.
const UndefinedExtent = math.MaxUint32

// Format is a pixel format. Values match VkFormat.
type Format int32

// Formats the negotiator needs to name.
const (
	FormatUndefined     Format = 0
	FormatB8G8R8A8Unorm Format = 44
	FormatB8G8R8A8Srgb  Format = 50
)

// ColorSpace matches VkColorSpaceKHR.
type ColorSpace int32

// ColorSpaceSrgbNonlinear is the only color space every surface supports.
const ColorSpaceSrgbNonlinear ColorSpace = 0

// SurfaceFormat pairs a pixel format with a color space.
type SurfaceFormat struct {
	Format     Format
	ColorSpace ColorSpace
}

// DefaultSurfaceFormat is chosen whenever the surface accepts it.
var DefaultSurfaceFormat = SurfaceFormat{
	Format:     FormatB8G8R8A8Unorm,
	ColorSpace: ColorSpaceSrgbNonlinear,
}

// PresentMode is the policy deciding when an image reaches the screen.
// Values match VkPresentModeKHR.
type PresentMode int32

// Present modes, FIFO is always supported
const (
	PresentModeImmediate PresentMode = iota
	PresentModeMailbox
	PresentModeFIFO
	PresentModeFIFORelaxed
)

func (p PresentMode) String() string {
	switch p {
	case PresentModeImmediate:
		return "immediate"
	case PresentModeMailbox:
		return "mailbox"
	case PresentModeFIFO:
		return "fifo"
	case PresentModeFIFORelaxed:
		return "fifo-relaxed"
	}
	return "unknown"
}

// SurfaceTransform matches VkSurfaceTransformFlagBitsKHR.
type SurfaceTransform uint32

// SurfaceTransformIdentity leaves images as they are.
const SurfaceTransformIdentity SurfaceTransform = 0x1

// CompositeAlpha matches VkCompositeAlphaFlagBitsKHR.
// As a set, it holds several bits.
type CompositeAlpha uint32

// Composite alpha modes in order of preference
const (
	CompositeAlphaOpaque         CompositeAlpha = 0x1
	CompositeAlphaPreMultiplied  CompositeAlpha = 0x2
	CompositeAlphaPostMultiplied CompositeAlpha = 0x4
	CompositeAlphaInherit        CompositeAlpha = 0x8
)

// SurfaceCapabilities is what a surface reports about itself on an adapter.
type SurfaceCapabilities struct {
	MinImageCount uint32

	// MaxImageCount of 0 means there is no limit
	MaxImageCount uint32

	CurrentExtent  Extent2D
	MinImageExtent Extent2D
	MaxImageExtent Extent2D

	SupportedTransforms     SurfaceTransform
	CurrentTransform        SurfaceTransform
	SupportedCompositeAlpha CompositeAlpha
}

// SharingMode is how swapchain images are shared between queue families.
type SharingMode int

// Sharing modes
const (
	SharingModeExclusive SharingMode = iota
	SharingModeConcurrent
)

func (s SharingMode) String() string {
	if s == SharingModeConcurrent {
		return "concurrent"
	}
	return "exclusive"
}

// SwapchainPlan is the result of a negotiation. It is handed read-only
// to whatever creates the logical device and swapchain.
type SwapchainPlan struct {
	Adapter Adapter
	Roles   QueueRoles

	Format      SurfaceFormat
	PresentMode PresentMode
	Extent      Extent2D
	ImageCount  uint32

	Sharing            SharingMode
	QueueFamilyIndices []uint32

	PreTransform   SurfaceTransform
	CompositeAlpha CompositeAlpha
}
