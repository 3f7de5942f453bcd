// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	"errors"
	"unsafe"

	log "github.com/sirupsen/logrus"
	vk "github.com/vulkan-go/vulkan"
)

// debugReportFlags subscribes to every kind of report, down to
// debug messages from the loader and layers.
const debugReportFlags = vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit |
	vk.DebugReportPerformanceWarningBit | vk.DebugReportInformationBit |
	vk.DebugReportDebugBit)

func debugReportCreateInfo() vk.DebugReportCallbackCreateInfo {
	return vk.DebugReportCallbackCreateInfo{
		SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags:       debugReportFlags,
		PfnCallback: dbgCallbackFunc,
	}
}

func (v *VulkanInstance) setupDebugReport() error {
	dbgCreateInfo := debugReportCreateInfo()

	var dbg vk.DebugReportCallback
	if err := vk.Error(vk.CreateDebugReportCallback(v.instance, &dbgCreateInfo, nil, &dbg)); err != nil {
		return errors.New("vk.CreateDebugReportCallback(): " + err.Error())
	}
	v.debugCallback = dbg
	return nil
}

func dbgCallbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType,
	object uint64, location uint, messageCode int32, pLayerPrefix string,
	pMessage string, pUserData unsafe.Pointer) vk.Bool32 {

	log.WithFields(log.Fields{
		"layer": pLayerPrefix,
		"code":  messageCode,
	}).Log(debugLevel(flags), "validation layer: "+pMessage)

	// The call that triggered the report is never aborted
	return vk.Bool32(vk.False)
}

// debugLevel maps debug report flags to a log level, most severe bit first.
func debugLevel(flags vk.DebugReportFlags) log.Level {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		return log.ErrorLevel
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit|vk.DebugReportPerformanceWarningBit) != 0:
		return log.WarnLevel
	case flags&vk.DebugReportFlags(vk.DebugReportInformationBit) != 0:
		return log.InfoLevel
	}
	return log.DebugLevel
}
