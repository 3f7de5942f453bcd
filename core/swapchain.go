// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

// SelectSwapchainPlan picks concrete swapchain parameters from what the
// surface reports.
func SelectSwapchainPlan(caps SurfaceCapabilities, formats []SurfaceFormat, modes []PresentMode, requested Extent2D, roles QueueRoles) SwapchainPlan {
	sharing, families := ChooseSharing(roles)
	return SwapchainPlan{
		Roles:              roles,
		Format:             ChooseSurfaceFormat(formats),
		PresentMode:        ChoosePresentMode(modes),
		Extent:             ChooseExtent(caps, requested),
		ImageCount:         ChooseImageCount(caps),
		Sharing:            sharing,
		QueueFamilyIndices: families,
		PreTransform:       caps.CurrentTransform,
		CompositeAlpha:     ChooseCompositeAlpha(caps.SupportedCompositeAlpha),
	}
}

// ChooseSurfaceFormat returns DefaultSurfaceFormat if the surface takes any
// format (a lone undefined entry) or lists it. Otherwise the first reported
// format is used. An empty list yields DefaultSurfaceFormat.
func ChooseSurfaceFormat(formats []SurfaceFormat) SurfaceFormat {
	if len(formats) == 0 {
		return DefaultSurfaceFormat
	}
	if len(formats) == 1 && formats[0].Format == FormatUndefined {
		return DefaultSurfaceFormat
	}
	for _, f := range formats {
		if f == DefaultSurfaceFormat {
			return f
		}
	}
	return formats[0]
}

// ChoosePresentMode prefers mailbox, then immediate, then FIFO.
func ChoosePresentMode(modes []PresentMode) PresentMode {
	best := PresentModeFIFO
	for _, m := range modes {
		switch m {
		case PresentModeMailbox:
			return m
		case PresentModeImmediate:
			best = m
		}
	}
	return best
}

// ChooseExtent returns the surface's current extent, unless the surface leaves
// the size to the swapchain. In that case the requested extent is clamped into
// the supported range, width and height independently.
func ChooseExtent(caps SurfaceCapabilities, requested Extent2D) Extent2D {
	if caps.CurrentExtent.Width != UndefinedExtent {
		return caps.CurrentExtent
	}
	return Extent2D{
		Width:  clamp(requested.Width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clamp(requested.Height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

// ChooseImageCount asks for one image more than the minimum,
// within the maximum if the surface has one.
func ChooseImageCount(caps SurfaceCapabilities) uint32 {
	count := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

// ChooseSharing shares images concurrently between two different families
// and exclusively otherwise. The exclusive case carries no family list.
func ChooseSharing(roles QueueRoles) (SharingMode, []uint32) {
	graphics, _ := roles.Graphics.Get()
	present, _ := roles.Present.Get()
	if graphics != present {
		return SharingModeConcurrent, []uint32{graphics, present}
	}
	return SharingModeExclusive, nil
}

var compositeAlphaPreference = []CompositeAlpha{
	CompositeAlphaOpaque,
	CompositeAlphaPreMultiplied,
	CompositeAlphaPostMultiplied,
	CompositeAlphaInherit,
}

// ChooseCompositeAlpha returns the first supported mode in order of preference,
// opaque when the surface reports none.
func ChooseCompositeAlpha(supported CompositeAlpha) CompositeAlpha {
	for _, flag := range compositeAlphaPreference {
		if supported&flag != 0 {
			return flag
		}
	}
	return CompositeAlphaOpaque
}

func clamp(v, min, max uint32) uint32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
