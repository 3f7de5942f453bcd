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

// NewLogicalDevice creates the logical device a negotiated plan asks for,
// one queue per distinct family, and fetches the graphics and present queues.
// Layers are only set for older implementations that still look at them.
func NewLogicalDevice(plan core.SwapchainPlan, extensions, layers []string) (*LogicalDevice, error) {
	pd, err := physicalDevice(plan.Adapter)
	if err != nil {
		return nil, err
	}
	graphicsIndex, ok := plan.Roles.Graphics.Get()
	if !ok {
		return nil, errors.New("plan has no graphics queue family")
	}
	presentIndex, ok := plan.Roles.Present.Get()
	if !ok {
		return nil, errors.New("plan has no present queue family")
	}

	queueInfos := queueCreateInfos(plan.Roles.Families())
	dci := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: safeStrings(extensions),
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     safeStrings(layers),
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{{}},
	}

	var device vk.Device
	if err := vk.Error(vk.CreateDevice(pd, &dci, nil, &device)); err != nil {
		return nil, errors.New("vk.CreateDevice(): " + err.Error())
	}

	var graphicsQueue, presentQueue vk.Queue
	vk.GetDeviceQueue(device, graphicsIndex, 0, &graphicsQueue)
	vk.GetDeviceQueue(device, presentIndex, 0, &presentQueue)

	return &LogicalDevice{
		device:         device,
		physicalDevice: pd,
		graphicsQueue:  graphicsQueue,
		presentQueue:   presentQueue,
	}, nil
}

func queueCreateInfos(families []uint32) []vk.DeviceQueueCreateInfo {
	infos := make([]vk.DeviceQueueCreateInfo, len(families))
	for i, family := range families {
		infos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: family,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		}
	}
	return infos
}

// LogicalDevice is a created device with its queues
type LogicalDevice struct {
	device         vk.Device
	physicalDevice vk.PhysicalDevice
	graphicsQueue  vk.Queue
	presentQueue   vk.Queue
}

// Device returns the vk.Device
func (d *LogicalDevice) Device() vk.Device {
	return d.device
}

// GraphicsQueue returns the queue graphics commands are submitted to
func (d *LogicalDevice) GraphicsQueue() vk.Queue {
	return d.graphicsQueue
}

// PresentQueue returns the queue images are presented on.
// It is the graphics queue when both roles share a family.
func (d *LogicalDevice) PresentQueue() vk.Queue {
	return d.presentQueue
}

func (d *LogicalDevice) String() string {
	return fmt.Sprintf("device %v (graphics queue %v, present queue %v)", d.device, d.graphicsQueue, d.presentQueue)
}

// Destroy waits for the device to idle and destroys it
func (d *LogicalDevice) Destroy() {
	vk.DeviceWaitIdle(d.device)
	vk.DestroyDevice(d.device, nil)
}
