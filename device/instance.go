// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	"errors"
	"fmt"
	"unsafe"

	log "github.com/sirupsen/logrus"
	vk "github.com/vulkan-go/vulkan"

	"github.com/devblok/hellovk/core"
)

const debugReportExtension = "VK_EXT_debug_report"

// DefaultApplicationInfo describes this application to the driver
var DefaultApplicationInfo = &vk.ApplicationInfo{
	SType:              vk.StructureTypeApplicationInfo,
	ApiVersion:         vk.MakeVersion(1, 0, 0),
	ApplicationVersion: vk.MakeVersion(1, 0, 0),
	EngineVersion:      vk.MakeVersion(1, 0, 0),
	PApplicationName:   "Hello Triangle\x00",
	PEngineName:        "No Engine\x00",
}

// NewVulkanInstance creates a Vulkan instance. With a nil procAddr the
// system loader is used, otherwise the one the window library hands out.
func NewVulkanInstance(appInfo *vk.ApplicationInfo, procAddr unsafe.Pointer, cfg core.InstanceConfiguration) (*VulkanInstance, error) {
	cfg = withValidation(cfg)

	if procAddr == nil {
		if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
			return nil, errors.New("vk.SetDefaultGetInstanceProcAddr(): " + err.Error())
		}
	} else {
		vk.SetGetInstanceProcAddr(procAddr)
	}

	if err := vk.Init(); err != nil {
		return nil, errors.New("vk.Init(): " + err.Error())
	}

	if cfg.Validation {
		available, err := instanceLayers()
		if err != nil {
			return nil, err
		}
		if missing := missingNames(cfg.Layers, available); len(missing) > 0 {
			return nil, fmt.Errorf("validation layers requested, but not available: %v", missing)
		}
	}
	logInstanceExtensions()

	instanceInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        appInfo,
		EnabledExtensionCount:   uint32(len(cfg.Extensions)),
		PpEnabledExtensionNames: safeStrings(cfg.Extensions),
		EnabledLayerCount:       uint32(len(cfg.Layers)),
		PpEnabledLayerNames:     safeStrings(cfg.Layers),
	}

	var instance vk.Instance
	if err := vk.Error(vk.CreateInstance(&instanceInfo, nil, &instance)); err != nil {
		return nil, errors.New("vk.CreateInstance(): " + err.Error())
	}
	vk.InitInstance(instance)

	v := &VulkanInstance{
		configuration: cfg,
		instance:      instance,
		debugCallback: vk.NullDebugReportCallback,
		surface:       vk.NullSurface,
	}

	if cfg.Validation {
		if err := v.setupDebugReport(); err != nil {
			vk.DestroyInstance(instance, nil)
			return nil, err
		}
	}

	return v, nil
}

// withValidation adds the validation layer and the debug report
// extension when validation is on. Nothing is added twice.
func withValidation(cfg core.InstanceConfiguration) core.InstanceConfiguration {
	if !cfg.Validation {
		return cfg
	}
	layers := append([]string{}, cfg.Layers...)
	if len(missingNames([]string{core.ValidationLayer}, layers)) > 0 {
		layers = append(layers, core.ValidationLayer)
	}
	extensions := append([]string{}, cfg.Extensions...)
	if len(missingNames([]string{debugReportExtension}, extensions)) > 0 {
		extensions = append(extensions, debugReportExtension)
	}
	cfg.Layers = layers
	cfg.Extensions = extensions
	return cfg
}

// VulkanInstance describes a Vulkan API Instance
type VulkanInstance struct {
	configuration core.InstanceConfiguration

	instance      vk.Instance
	debugCallback vk.DebugReportCallback
	surface       vk.Surface
}

// Instance returns the internal vk.Instance
func (v *VulkanInstance) Instance() interface{} {
	return v.instance
}

// SetSurface sets the window surface for rendering
func (v *VulkanInstance) SetSurface(pSurface unsafe.Pointer) {
	v.surface = vk.SurfaceFromPointer(uintptr(pSurface))
}

// Surface returns the window surface, vk.NullSurface if not yet set
func (v *VulkanInstance) Surface() vk.Surface {
	return v.surface
}

// Configuration returns the configuration the instance was created with,
// including layers and extensions added for validation
func (v *VulkanInstance) Configuration() core.InstanceConfiguration {
	return v.configuration
}

// Backend returns a negotiation backend over this instance
func (v *VulkanInstance) Backend() *VulkanBackend {
	return &VulkanBackend{instance: v.instance}
}

// Destroy destroys the surface, debug callback and the instance
func (v *VulkanInstance) Destroy() {
	if v.surface != vk.NullSurface {
		vk.DestroySurface(v.instance, v.surface, nil)
		v.surface = vk.NullSurface
	}
	if v.debugCallback != vk.NullDebugReportCallback {
		vk.DestroyDebugReportCallback(v.instance, v.debugCallback, nil)
		v.debugCallback = vk.NullDebugReportCallback
	}
	vk.DestroyInstance(v.instance, nil)
}

func instanceLayers() ([]string, error) {
	var count uint32
	if err := vk.Error(vk.EnumerateInstanceLayerProperties(&count, nil)); err != nil {
		return nil, errors.New("vk.EnumerateInstanceLayerProperties(): " + err.Error())
	}
	layers := make([]vk.LayerProperties, count)
	if err := vk.Error(vk.EnumerateInstanceLayerProperties(&count, layers)); err != nil {
		return nil, errors.New("vk.EnumerateInstanceLayerProperties(): " + err.Error())
	}

	names := make([]string, 0, len(layers))
	for _, layer := range layers {
		layer.Deref()
		names = append(names, vk.ToString(layer.LayerName[:]))
	}
	return names, nil
}

// logInstanceExtensions lists what the loader offers. Informational only,
// failures are logged and otherwise ignored.
func logInstanceExtensions() {
	var count uint32
	if err := vk.Error(vk.EnumerateInstanceExtensionProperties("", &count, nil)); err != nil {
		log.WithError(err).Debug("could not enumerate instance extensions")
		return
	}
	extensions := make([]vk.ExtensionProperties, count)
	if err := vk.Error(vk.EnumerateInstanceExtensionProperties("", &count, extensions)); err != nil {
		log.WithError(err).Debug("could not enumerate instance extensions")
		return
	}
	for _, ext := range extensions {
		ext.Deref()
		log.WithField("extension", vk.ToString(ext.ExtensionName[:])).Debug("instance extension available")
	}
}
