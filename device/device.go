// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package device talks to the Vulkan API: it creates the instance,
// answers the negotiator's capability queries and creates the logical
// device a negotiated plan asks for.
package device

import (
	vk "github.com/vulkan-go/vulkan"
)

// PhysicalDeviceInfo describes available physical properties of a rendering device
type PhysicalDeviceInfo struct {
	ID            int               `json:"id"`
	VendorID      int               `json:"vendorId"`
	DriverVersion int               `json:"driverVersion"`
	Name          string            `json:"name"`
	Type          string            `json:"type"`
	Invalid       bool              `json:"invalid"`
	Extensions    []string          `json:"extensions"`
	Layers        []string          `json:"layers"`
	Memory        uint              `json:"memory"`
	QueueFamilies []QueueFamilyInfo `json:"queueFamilies"`
}

// QueueFamilyInfo describes one queue family of a device
type QueueFamilyInfo struct {
	Index    uint32 `json:"index"`
	Count    uint32 `json:"count"`
	Graphics bool   `json:"graphics"`
	Compute  bool   `json:"compute"`
	Transfer bool   `json:"transfer"`
}

// PhysicalDevice is a Vulkan physical device as the negotiator sees it.
type PhysicalDevice struct {
	handle vk.PhysicalDevice
	name   string
}

// Name implements core.Adapter
func (p *PhysicalDevice) Name() string {
	return p.name
}

// Handle returns the vk.PhysicalDevice
func (p *PhysicalDevice) Handle() vk.PhysicalDevice {
	return p.handle
}

func deviceTypeName(t vk.PhysicalDeviceType) string {
	switch t {
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return "integrated"
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return "discrete"
	case vk.PhysicalDeviceTypeVirtualGpu:
		return "virtual"
	case vk.PhysicalDeviceTypeCpu:
		return "cpu"
	}
	return "other"
}
