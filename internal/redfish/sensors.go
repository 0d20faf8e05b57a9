package redfish

import (
	"context"
	"fmt"
)

// SensorReading represents a single sensor value.
type SensorReading struct {
	Name     string  `json:"name"`
	Value    float64 `json:"value"`
	Unit     string  `json:"unit"`
	Status   string  `json:"status"`
	Critical float64 `json:"critical,omitempty"`
}

// SensorData holds all sensor readings grouped by type.
type SensorData struct {
	Temperatures []SensorReading `json:"temperatures"`
	Fans         []SensorReading `json:"fans"`
	Voltages     []SensorReading `json:"voltages"`
	PowerWatts   []SensorReading `json:"powerWatts"`
}

type sensorStatus struct {
	Health string `json:"Health"`
	State  string `json:"State"`
}

func (s sensorStatus) String() string {
	if s.Health != "" {
		return s.Health
	}
	return s.State
}

type thermalResponse struct {
	Temperatures []struct {
		Name                   string       `json:"Name"`
		ReadingCelsius         *float64     `json:"ReadingCelsius"`
		UpperThresholdCritical *float64     `json:"UpperThresholdCritical"`
		Status                 sensorStatus `json:"Status"`
	} `json:"Temperatures"`
	Fans []struct {
		Name         string       `json:"Name"`
		FanName      string       `json:"FanName"`
		Reading      *float64     `json:"Reading"`
		ReadingUnits string       `json:"ReadingUnits"`
		Status       sensorStatus `json:"Status"`
	} `json:"Fans"`
}

type powerResponse struct {
	PowerControl []struct {
		Name               string   `json:"Name"`
		PowerConsumedWatts *float64 `json:"PowerConsumedWatts"`
	} `json:"PowerControl"`
	Voltages []struct {
		Name          string       `json:"Name"`
		ReadingVolts  *float64     `json:"ReadingVolts"`
		Status        sensorStatus `json:"Status"`
	} `json:"Voltages"`
}

// GetSensors returns thermal and power sensor readings from the chassis.
func (c *Client) GetSensors(ctx context.Context) (*SensorData, error) {
	result := &SensorData{}

	resp, err := c.Get(ctx, chassisPath+"/Thermal")
	if err != nil {
		return nil, fmt.Errorf("getting thermal sensors: %w", err)
	}
	var thermal thermalResponse
	if err := resp.Decode(&thermal); err != nil {
		return nil, fmt.Errorf("parsing thermal sensors: %w", err)
	}

	for _, t := range thermal.Temperatures {
		if t.ReadingCelsius == nil {
			continue
		}
		r := SensorReading{Name: t.Name, Value: *t.ReadingCelsius, Unit: "C", Status: t.Status.String()}
		if t.UpperThresholdCritical != nil {
			r.Critical = *t.UpperThresholdCritical
		}
		result.Temperatures = append(result.Temperatures, r)
	}
	for _, f := range thermal.Fans {
		if f.Reading == nil {
			continue
		}
		name := f.Name
		if name == "" {
			name = f.FanName
		}
		unit := f.ReadingUnits
		if unit == "" {
			unit = "RPM"
		}
		result.Fans = append(result.Fans, SensorReading{
			Name: name, Value: *f.Reading, Unit: unit, Status: f.Status.String(),
		})
	}

	resp, err = c.Get(ctx, chassisPath+"/Power")
	if err != nil {
		return nil, fmt.Errorf("getting power sensors: %w", err)
	}
	var power powerResponse
	if err := resp.Decode(&power); err != nil {
		return nil, fmt.Errorf("parsing power sensors: %w", err)
	}

	for _, v := range power.Voltages {
		if v.ReadingVolts == nil {
			continue
		}
		result.Voltages = append(result.Voltages, SensorReading{
			Name: v.Name, Value: *v.ReadingVolts, Unit: "V", Status: v.Status.String(),
		})
	}
	for _, p := range power.PowerControl {
		if p.PowerConsumedWatts == nil {
			continue
		}
		result.PowerWatts = append(result.PowerWatts, SensorReading{
			Name: p.Name, Value: *p.PowerConsumedWatts, Unit: "W", Status: "ok",
		})
	}

	return result, nil
}
