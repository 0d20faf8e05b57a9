package redfish

import (
	"context"
	"fmt"
)

// SystemInfo holds system identification data.
type SystemInfo struct {
	Hostname     string  `json:"hostname,omitempty"`
	Manufacturer string  `json:"manufacturer"`
	Model        string  `json:"model"`
	SerialNumber string  `json:"serialNumber"`
	UUID         string  `json:"uuid"`
	BIOSVersion  string  `json:"biosVersion"`
	PowerState   string  `json:"powerState"`
	Health       string  `json:"health"`
	MemoryGiB    float64 `json:"memoryGiB"`
	CPUCount     int     `json:"cpuCount"`
	CPUModel     string  `json:"cpuModel,omitempty"`
}

// GetSystemInfo returns system identification and firmware info.
func (c *Client) GetSystemInfo(ctx context.Context) (*SystemInfo, error) {
	resp, err := c.Get(ctx, systemPath)
	if err != nil {
		return nil, fmt.Errorf("getting system info: %w", err)
	}

	var sys struct {
		HostName      string       `json:"HostName"`
		Manufacturer  string       `json:"Manufacturer"`
		Model         string       `json:"Model"`
		SerialNumber  string       `json:"SerialNumber"`
		UUID          string       `json:"UUID"`
		BiosVersion   string       `json:"BiosVersion"`
		PowerState    string       `json:"PowerState"`
		Status        sensorStatus `json:"Status"`
		MemorySummary struct {
			TotalSystemMemoryGiB float64 `json:"TotalSystemMemoryGiB"`
		} `json:"MemorySummary"`
		ProcessorSummary struct {
			Count int    `json:"Count"`
			Model string `json:"Model"`
		} `json:"ProcessorSummary"`
	}
	if err := resp.Decode(&sys); err != nil {
		return nil, fmt.Errorf("parsing system info: %w", err)
	}

	return &SystemInfo{
		Hostname:     sys.HostName,
		Manufacturer: sys.Manufacturer,
		Model:        sys.Model,
		SerialNumber: sys.SerialNumber,
		UUID:         sys.UUID,
		BIOSVersion:  sys.BiosVersion,
		PowerState:   sys.PowerState,
		Health:       sys.Status.String(),
		MemoryGiB:    sys.MemorySummary.TotalSystemMemoryGiB,
		CPUCount:     sys.ProcessorSummary.Count,
		CPUModel:     sys.ProcessorSummary.Model,
	}, nil
}

// Drive describes one physical drive.
type Drive struct {
	Name          string `json:"name"`
	Model         string `json:"model"`
	MediaType     string `json:"mediaType"`
	CapacityBytes int64  `json:"capacityBytes"`
	Health        string `json:"health"`
}

// StorageController groups the drives behind one controller.
type StorageController struct {
	Name   string  `json:"name"`
	Drives []Drive `json:"drives"`
}

// GetStorage walks the storage collection and its drives.
func (c *Client) GetStorage(ctx context.Context) ([]StorageController, error) {
	paths, err := c.members(ctx, systemPath+"/Storage")
	if err != nil {
		return nil, fmt.Errorf("listing storage: %w", err)
	}

	var controllers []StorageController
	for _, p := range paths {
		resp, err := c.Get(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("getting storage %s: %w", p, err)
		}
		var ctrl struct {
			Name   string     `json:"Name"`
			Drives []odataRef `json:"Drives"`
		}
		if err := resp.Decode(&ctrl); err != nil {
			return nil, fmt.Errorf("parsing storage %s: %w", p, err)
		}

		sc := StorageController{Name: ctrl.Name}
		for _, ref := range ctrl.Drives {
			dresp, err := c.Get(ctx, ref.ID)
			if err != nil {
				return nil, fmt.Errorf("getting drive %s: %w", ref.ID, err)
			}
			var d struct {
				Name          string       `json:"Name"`
				Model         string       `json:"Model"`
				MediaType     string       `json:"MediaType"`
				CapacityBytes int64        `json:"CapacityBytes"`
				Status        sensorStatus `json:"Status"`
			}
			if err := dresp.Decode(&d); err != nil {
				return nil, fmt.Errorf("parsing drive %s: %w", ref.ID, err)
			}
			sc.Drives = append(sc.Drives, Drive{
				Name:          d.Name,
				Model:         d.Model,
				MediaType:     d.MediaType,
				CapacityBytes: d.CapacityBytes,
				Health:        d.Status.String(),
			})
		}
		controllers = append(controllers, sc)
	}
	return controllers, nil
}

// DIMM describes one installed memory module.
type DIMM struct {
	Locator      string `json:"locator"`
	CapacityMiB  int64  `json:"capacityMiB"`
	SpeedMHz     int    `json:"speedMHz"`
	Manufacturer string `json:"manufacturer"`
	Health       string `json:"health"`
}

// GetMemory walks the memory collection.
func (c *Client) GetMemory(ctx context.Context) ([]DIMM, error) {
	paths, err := c.members(ctx, systemPath+"/Memory")
	if err != nil {
		return nil, fmt.Errorf("listing memory: %w", err)
	}

	var dimms []DIMM
	for _, p := range paths {
		resp, err := c.Get(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("getting memory %s: %w", p, err)
		}
		var m struct {
			DeviceLocator     string       `json:"DeviceLocator"`
			CapacityMiB       int64        `json:"CapacityMiB"`
			OperatingSpeedMhz int          `json:"OperatingSpeedMhz"`
			Manufacturer      string       `json:"Manufacturer"`
			Status            sensorStatus `json:"Status"`
		}
		if err := resp.Decode(&m); err != nil {
			return nil, fmt.Errorf("parsing memory %s: %w", p, err)
		}
		if m.CapacityMiB == 0 {
			// empty slot
			continue
		}
		dimms = append(dimms, DIMM{
			Locator:      m.DeviceLocator,
			CapacityMiB:  m.CapacityMiB,
			SpeedMHz:     m.OperatingSpeedMhz,
			Manufacturer: m.Manufacturer,
			Health:       m.Status.String(),
		})
	}
	return dimms, nil
}

// FirmwareItem is one entry of the update service firmware inventory.
type FirmwareItem struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// GetFirmwareInventory lists installed firmware components and versions.
func (c *Client) GetFirmwareInventory(ctx context.Context) ([]FirmwareItem, error) {
	paths, err := c.members(ctx, serviceRoot+"/UpdateService/FirmwareInventory")
	if err != nil {
		return nil, fmt.Errorf("listing firmware inventory: %w", err)
	}

	var items []FirmwareItem
	for _, p := range paths {
		resp, err := c.Get(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("getting firmware %s: %w", p, err)
		}
		var fw struct {
			Name    string `json:"Name"`
			Version string `json:"Version"`
		}
		if err := resp.Decode(&fw); err != nil {
			return nil, fmt.Errorf("parsing firmware %s: %w", p, err)
		}
		items = append(items, FirmwareItem{Name: fw.Name, Version: fw.Version})
	}
	return items, nil
}

// BMCNetInfo describes the management controller and its network interfaces.
type BMCNetInfo struct {
	FirmwareVersion string         `json:"firmwareVersion"`
	Model           string         `json:"model,omitempty"`
	Interfaces      []BMCInterface `json:"interfaces"`
}

// BMCInterface is one BMC ethernet interface.
type BMCInterface struct {
	MACAddress string   `json:"macAddress"`
	Addresses  []string `json:"addresses"`
	Hostname   string   `json:"hostname,omitempty"`
	SpeedMbps  int      `json:"speedMbps,omitempty"`
}

// GetBMCNetInfo returns the manager's firmware version and network config.
func (c *Client) GetBMCNetInfo(ctx context.Context) (*BMCNetInfo, error) {
	resp, err := c.Get(ctx, managerPath)
	if err != nil {
		return nil, fmt.Errorf("getting manager: %w", err)
	}
	var mgr struct {
		FirmwareVersion string `json:"FirmwareVersion"`
		Model           string `json:"Model"`
	}
	if err := resp.Decode(&mgr); err != nil {
		return nil, fmt.Errorf("parsing manager: %w", err)
	}

	info := &BMCNetInfo{FirmwareVersion: mgr.FirmwareVersion, Model: mgr.Model}

	paths, err := c.members(ctx, managerPath+"/EthernetInterfaces")
	if err != nil {
		return nil, fmt.Errorf("listing BMC interfaces: %w", err)
	}
	for _, p := range paths {
		iresp, err := c.Get(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("getting BMC interface %s: %w", p, err)
		}
		var eth struct {
			MACAddress    string `json:"MACAddress"`
			HostName      string `json:"HostName"`
			SpeedMbps     int    `json:"SpeedMbps"`
			IPv4Addresses []struct {
				Address string `json:"Address"`
			} `json:"IPv4Addresses"`
		}
		if err := iresp.Decode(&eth); err != nil {
			return nil, fmt.Errorf("parsing BMC interface %s: %w", p, err)
		}
		bi := BMCInterface{
			MACAddress: eth.MACAddress,
			Hostname:   eth.HostName,
			SpeedMbps:  eth.SpeedMbps,
		}
		for _, a := range eth.IPv4Addresses {
			if a.Address != "" {
				bi.Addresses = append(bi.Addresses, a.Address)
			}
		}
		info.Interfaces = append(info.Interfaces, bi)
	}
	return info, nil
}
