package redfish

import (
	"context"
	"net/http"
	"testing"
)

func TestGetSensors(t *testing.T) {
	ts := mockBMC(t, map[string]http.HandlerFunc{
		chassisPath + "/Thermal": jsonBody(`{
			"Temperatures":[
				{"Name":"CPU1 Temp","ReadingCelsius":52,"UpperThresholdCritical":95,"Status":{"Health":"OK"}},
				{"Name":"Absent Sensor","ReadingCelsius":null,"Status":{"State":"Absent"}}
			],
			"Fans":[
				{"FanName":"FAN1","Reading":4800,"Status":{"State":"Enabled"}}
			]}`),
		chassisPath + "/Power": jsonBody(`{
			"PowerControl":[{"Name":"System Power Control","PowerConsumedWatts":187}],
			"Voltages":[{"Name":"12V","ReadingVolts":12.1,"Status":{"Health":"OK"}}]}`),
	})

	c := newTestClient(ts)
	data, err := c.GetSensors(context.Background())
	if err != nil {
		t.Fatalf("GetSensors: %v", err)
	}

	if len(data.Temperatures) != 1 {
		t.Fatalf("temperatures = %d, want 1 (null readings skipped)", len(data.Temperatures))
	}
	temp := data.Temperatures[0]
	if temp.Name != "CPU1 Temp" || temp.Value != 52 || temp.Unit != "C" || temp.Critical != 95 {
		t.Errorf("temperature = %+v", temp)
	}
	if temp.Status != "OK" {
		t.Errorf("temperature status = %q, want OK", temp.Status)
	}

	if len(data.Fans) != 1 {
		t.Fatalf("fans = %d, want 1", len(data.Fans))
	}
	fan := data.Fans[0]
	if fan.Name != "FAN1" || fan.Value != 4800 || fan.Unit != "RPM" {
		t.Errorf("fan = %+v", fan)
	}
	if fan.Status != "Enabled" {
		t.Errorf("fan status = %q, want Enabled (falls back to State)", fan.Status)
	}

	if len(data.Voltages) != 1 || data.Voltages[0].Value != 12.1 {
		t.Errorf("voltages = %+v", data.Voltages)
	}
	if len(data.PowerWatts) != 1 || data.PowerWatts[0].Value != 187 {
		t.Errorf("power = %+v", data.PowerWatts)
	}
}

func TestGetSensors_ThermalUnavailable(t *testing.T) {
	ts := mockBMC(t, nil)
	c := newTestClient(ts)
	if _, err := c.GetSensors(context.Background()); err == nil {
		t.Fatal("expected error when thermal endpoint is missing")
	}
}
