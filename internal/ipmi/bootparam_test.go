package ipmi

import (
	"errors"
	"testing"
)

func TestEncodeBootDevice(t *testing.T) {
	tests := []struct {
		name       string
		device     string
		persistent bool
		uefi       bool
		want       [2]byte
	}{
		{"pxe once legacy", "pxe", false, false, [2]byte{0x80, 0x04}},
		{"pxe once uefi", "pxe", false, true, [2]byte{0xA0, 0x04}},
		{"hdd persistent uefi", "hdd", true, true, [2]byte{0xE0, 0x08}},
		{"cd once legacy", "cd", false, false, [2]byte{0x80, 0x14}},
		{"bios persistent legacy", "bios", true, false, [2]byte{0xC0, 0x18}},
		{"usb once uefi", "usb", false, true, [2]byte{0xA0, 0x3C}},
		{"none once legacy", "none", false, false, [2]byte{0x80, 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeBootDevice(tt.device, tt.persistent, tt.uefi)
			if err != nil {
				t.Fatalf("EncodeBootDevice: %v", err)
			}
			if got != tt.want {
				t.Errorf("EncodeBootDevice(%q, %v, %v) = %#02x, want %#02x",
					tt.device, tt.persistent, tt.uefi, got, tt.want)
			}
		})
	}
}

func TestEncodeBootDevice_Unknown(t *testing.T) {
	_, err := EncodeBootDevice("floppy", false, false)
	if err == nil {
		t.Fatal("expected error for unknown device")
	}
	if !errors.Is(err, ErrUnknownBootDevice) {
		t.Errorf("error = %v, want ErrUnknownBootDevice", err)
	}
}

func TestClearBootFlags(t *testing.T) {
	got := ClearBootFlags()
	if got != [2]byte{0x00, 0x00} {
		t.Errorf("ClearBootFlags() = %#02x, want all zero", got)
	}
}
