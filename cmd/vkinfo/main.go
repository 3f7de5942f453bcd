// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Command vkinfo prints what the Vulkan loader knows about every physical
// device as JSON, optionally lz4 compressed.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/pierrec/lz4"
	log "github.com/sirupsen/logrus"

	"github.com/devblok/hellovk/core"
	"github.com/devblok/hellovk/device"
)

var (
	compress   = flag.Bool("z", false, "lz4 compress the report")
	output     = flag.String("o", "", "write the report to a file instead of stdout")
	validation = flag.Bool("validation", false, "enable validation layers while enumerating")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg := core.InstanceConfiguration{
		Validation: *validation,
	}
	instance, err := device.NewVulkanInstance(device.DefaultApplicationInfo, nil, cfg)
	if err != nil {
		return err
	}
	defer instance.Destroy()

	infos, err := instance.PhysicalDevicesInfo()
	if err != nil {
		return err
	}
	log.WithField("devices", len(infos)).Debug("physical devices enumerated")

	var w io.Writer = os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return writeReport(w, infos, *compress)
}

// writeReport encodes the device report, through an lz4 frame when compressed
func writeReport(w io.Writer, infos []device.PhysicalDeviceInfo, compressed bool) error {
	if !compressed {
		return json.NewEncoder(w).Encode(infos)
	}

	zw := lz4.NewWriter(w)
	if err := json.NewEncoder(zw).Encode(infos); err != nil {
		return err
	}
	return zw.Close()
}
