// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	"errors"
	"fmt"

	vk "github.com/vulkan-go/vulkan"

	"github.com/devblok/hellovk/core"
)

// VulkanBackend answers the negotiator's queries with Vulkan calls.
type VulkanBackend struct {
	instance vk.Instance
}

func enumerateDevices(instance vk.Instance) ([]vk.PhysicalDevice, error) {
	var deviceCount uint32
	if err := vk.Error(vk.EnumeratePhysicalDevices(instance, &deviceCount, nil)); err != nil {
		return nil, fmt.Errorf("vulkan physical device enumeration failed: %s", err)
	}
	availableDevices := make([]vk.PhysicalDevice, deviceCount)
	if err := vk.Error(vk.EnumeratePhysicalDevices(instance, &deviceCount, availableDevices)); err != nil {
		return nil, fmt.Errorf("vulkan physical device enumeration failed: %s", err)
	}
	return availableDevices, nil
}

// EnumerateAdapters implements core.Backend
func (b *VulkanBackend) EnumerateAdapters() ([]core.Adapter, error) {
	devices, err := enumerateDevices(b.instance)
	if err != nil {
		return nil, err
	}

	adapters := make([]core.Adapter, len(devices))
	for i, pd := range devices {
		var properties vk.PhysicalDeviceProperties
		vk.GetPhysicalDeviceProperties(pd, &properties)
		properties.Deref()
		adapters[i] = &PhysicalDevice{
			handle: pd,
			name:   vk.ToString(properties.DeviceName[:]),
		}
	}
	return adapters, nil
}

// QueueFamilies implements core.Backend
func (b *VulkanBackend) QueueFamilies(adapter core.Adapter) ([]core.QueueFamily, error) {
	pd, err := physicalDevice(adapter)
	if err != nil {
		return nil, err
	}

	properties := queueFamilyProperties(pd)
	families := make([]core.QueueFamily, len(properties))
	for i, family := range properties {
		families[i] = core.QueueFamily{
			Index:      uint32(i),
			QueueCount: family.QueueCount,
			Graphics:   family.QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0,
		}
	}
	return families, nil
}

// SupportsPresent implements core.Backend
func (b *VulkanBackend) SupportsPresent(adapter core.Adapter, familyIndex uint32, surface core.Surface) (bool, error) {
	pd, err := physicalDevice(adapter)
	if err != nil {
		return false, err
	}
	s, err := vulkanSurface(surface)
	if err != nil {
		return false, err
	}

	var supported vk.Bool32
	if err := vk.Error(vk.GetPhysicalDeviceSurfaceSupport(pd, familyIndex, s, &supported)); err != nil {
		return false, errors.New("vk.GetPhysicalDeviceSurfaceSupport(): " + err.Error())
	}
	return supported.B(), nil
}

// Extensions implements core.Backend
func (b *VulkanBackend) Extensions(adapter core.Adapter) ([]string, error) {
	pd, err := physicalDevice(adapter)
	if err != nil {
		return nil, err
	}
	return deviceExtensions(pd)
}

// SurfaceCapabilities implements core.Backend
func (b *VulkanBackend) SurfaceCapabilities(adapter core.Adapter, surface core.Surface) (core.SurfaceCapabilities, error) {
	pd, err := physicalDevice(adapter)
	if err != nil {
		return core.SurfaceCapabilities{}, err
	}
	s, err := vulkanSurface(surface)
	if err != nil {
		return core.SurfaceCapabilities{}, err
	}

	var caps vk.SurfaceCapabilities
	if err := vk.Error(vk.GetPhysicalDeviceSurfaceCapabilities(pd, s, &caps)); err != nil {
		return core.SurfaceCapabilities{}, errors.New("vk.GetPhysicalDeviceSurfaceCapabilities(): " + err.Error())
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()

	return core.SurfaceCapabilities{
		MinImageCount:           caps.MinImageCount,
		MaxImageCount:           caps.MaxImageCount,
		CurrentExtent:           fromExtent(caps.CurrentExtent),
		MinImageExtent:          fromExtent(caps.MinImageExtent),
		MaxImageExtent:          fromExtent(caps.MaxImageExtent),
		SupportedTransforms:     core.SurfaceTransform(caps.SupportedTransforms),
		CurrentTransform:        core.SurfaceTransform(caps.CurrentTransform),
		SupportedCompositeAlpha: core.CompositeAlpha(caps.SupportedCompositeAlpha),
	}, nil
}

// SurfaceFormats implements core.Backend
func (b *VulkanBackend) SurfaceFormats(adapter core.Adapter, surface core.Surface) ([]core.SurfaceFormat, error) {
	pd, err := physicalDevice(adapter)
	if err != nil {
		return nil, err
	}
	s, err := vulkanSurface(surface)
	if err != nil {
		return nil, err
	}

	var count uint32
	if err := vk.Error(vk.GetPhysicalDeviceSurfaceFormats(pd, s, &count, nil)); err != nil {
		return nil, errors.New("vk.GetPhysicalDeviceSurfaceFormats(): " + err.Error())
	}
	surfaceFormats := make([]vk.SurfaceFormat, count)
	if err := vk.Error(vk.GetPhysicalDeviceSurfaceFormats(pd, s, &count, surfaceFormats)); err != nil {
		return nil, errors.New("vk.GetPhysicalDeviceSurfaceFormats(): " + err.Error())
	}

	formats := make([]core.SurfaceFormat, len(surfaceFormats))
	for i := range surfaceFormats {
		surfaceFormats[i].Deref()
		formats[i] = core.SurfaceFormat{
			Format:     core.Format(surfaceFormats[i].Format),
			ColorSpace: core.ColorSpace(surfaceFormats[i].ColorSpace),
		}
	}
	return formats, nil
}

// SurfacePresentModes implements core.Backend
func (b *VulkanBackend) SurfacePresentModes(adapter core.Adapter, surface core.Surface) ([]core.PresentMode, error) {
	pd, err := physicalDevice(adapter)
	if err != nil {
		return nil, err
	}
	s, err := vulkanSurface(surface)
	if err != nil {
		return nil, err
	}

	var count uint32
	if err := vk.Error(vk.GetPhysicalDeviceSurfacePresentModes(pd, s, &count, nil)); err != nil {
		return nil, errors.New("vk.GetPhysicalDeviceSurfacePresentModes(): " + err.Error())
	}
	presentModes := make([]vk.PresentMode, count)
	if err := vk.Error(vk.GetPhysicalDeviceSurfacePresentModes(pd, s, &count, presentModes)); err != nil {
		return nil, errors.New("vk.GetPhysicalDeviceSurfacePresentModes(): " + err.Error())
	}

	modes := make([]core.PresentMode, len(presentModes))
	for i, mode := range presentModes {
		modes[i] = core.PresentMode(mode)
	}
	return modes, nil
}

func physicalDevice(adapter core.Adapter) (vk.PhysicalDevice, error) {
	pd, ok := adapter.(*PhysicalDevice)
	if !ok {
		return nil, fmt.Errorf("adapter %T was not created by the vulkan backend", adapter)
	}
	return pd.handle, nil
}

func vulkanSurface(surface core.Surface) (vk.Surface, error) {
	s, ok := surface.(vk.Surface)
	if !ok || s == vk.NullSurface {
		return vk.NullSurface, errors.New("no vulkan surface to present to")
	}
	return s, nil
}

func queueFamilyProperties(pd vk.PhysicalDevice) []vk.QueueFamilyProperties {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &count, nil)
	properties := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &count, properties)
	for i := range properties {
		properties[i].Deref()
	}
	return properties
}

func deviceExtensions(pd vk.PhysicalDevice) ([]string, error) {
	var count uint32
	if err := vk.Error(vk.EnumerateDeviceExtensionProperties(pd, "", &count, nil)); err != nil {
		return nil, errors.New("vk.EnumerateDeviceExtensionProperties(): " + err.Error())
	}
	properties := make([]vk.ExtensionProperties, count)
	if err := vk.Error(vk.EnumerateDeviceExtensionProperties(pd, "", &count, properties)); err != nil {
		return nil, errors.New("vk.EnumerateDeviceExtensionProperties(): " + err.Error())
	}

	names := make([]string, 0, len(properties))
	for _, ext := range properties {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names, nil
}

func fromExtent(e vk.Extent2D) core.Extent2D {
	return core.Extent2D{Width: e.Width, Height: e.Height}
}

// ToExtent converts a negotiated extent to its Vulkan form
func ToExtent(e core.Extent2D) vk.Extent2D {
	return vk.Extent2D{Width: e.Width, Height: e.Height}
}
