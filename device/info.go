// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	vk "github.com/vulkan-go/vulkan"
)

// PhysicalDevicesInfo returns a struct for each physical device along with
// info about it. A device whose extensions or layers could not be read is
// marked Invalid rather than left out.
func (v *VulkanInstance) PhysicalDevicesInfo() ([]PhysicalDeviceInfo, error) {
	devices, err := enumerateDevices(v.instance)
	if err != nil {
		return nil, err
	}

	pdi := make([]PhysicalDeviceInfo, len(devices))
	for i, pd := range devices {
		if extensions, err := deviceExtensions(pd); err != nil {
			pdi[i].Invalid = true
		} else {
			pdi[i].Extensions = extensions
		}

		// Get layers info
		var numDeviceLayers uint32
		if err := vk.Error(vk.EnumerateDeviceLayerProperties(pd, &numDeviceLayers, nil)); err != nil {
			pdi[i].Invalid = true
		}
		deviceLayers := make([]vk.LayerProperties, numDeviceLayers)
		if err := vk.Error(vk.EnumerateDeviceLayerProperties(pd, &numDeviceLayers, deviceLayers)); err != nil {
			pdi[i].Invalid = true
		}
		for _, layer := range deviceLayers {
			layer.Deref()
			pdi[i].Layers = append(pdi[i].Layers, vk.ToString(layer.LayerName[:]))
		}

		// Get memory info
		var memoryProperties vk.PhysicalDeviceMemoryProperties
		vk.GetPhysicalDeviceMemoryProperties(pd, &memoryProperties)
		memoryProperties.Deref()
		for iMem := uint32(0); iMem < memoryProperties.MemoryHeapCount; iMem++ {
			memoryProperties.MemoryHeaps[iMem].Deref()
			pdi[i].Memory += uint(memoryProperties.MemoryHeaps[iMem].Size)
		}

		for idx, family := range queueFamilyProperties(pd) {
			pdi[i].QueueFamilies = append(pdi[i].QueueFamilies, QueueFamilyInfo{
				Index:    uint32(idx),
				Count:    family.QueueCount,
				Graphics: family.QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0,
				Compute:  family.QueueFlags&vk.QueueFlags(vk.QueueComputeBit) != 0,
				Transfer: family.QueueFlags&vk.QueueFlags(vk.QueueTransferBit) != 0,
			})
		}

		// Get general device info
		var physicalDeviceProperties vk.PhysicalDeviceProperties
		vk.GetPhysicalDeviceProperties(pd, &physicalDeviceProperties)
		physicalDeviceProperties.Deref()
		pdi[i].ID = int(physicalDeviceProperties.DeviceID)
		pdi[i].VendorID = int(physicalDeviceProperties.VendorID)
		pdi[i].Name = vk.ToString(physicalDeviceProperties.DeviceName[:])
		pdi[i].Type = deviceTypeName(physicalDeviceProperties.DeviceType)
		pdi[i].DriverVersion = int(physicalDeviceProperties.DriverVersion)
	}
	return pdi, nil
}
