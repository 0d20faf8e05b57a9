package ipmi

import (
	"errors"
	"fmt"
)

// Boot flag encoding for Set System Boot Options parameter 5. Byte 1 is a
// bitfield (bit 7 marks the flags valid, bit 6 makes the override
// persistent, bit 5 selects UEFI); byte 2 is the device selector.
const (
	bootFlagValid      byte = 0x80
	bootFlagPersistent byte = 0x40
	bootFlagUEFI       byte = 0x20
)

// bootDeviceCodes maps symbolic device names to their selector codes.
var bootDeviceCodes = map[string]byte{
	"none": 0x00,
	"pxe":  0x04,
	"hdd":  0x08,
	"cd":   0x14,
	"bios": 0x18,
	"usb":  0x3C,
}

// ErrUnknownBootDevice is returned for a device name outside the fixed set.
// It is a caller-side validation error; no network call is made.
var ErrUnknownBootDevice = errors.New("unknown boot device")

// EncodeBootDevice translates a symbolic boot override into the two boot
// flag bytes. Pure function, no side effects.
func EncodeBootDevice(device string, persistent, uefi bool) ([2]byte, error) {
	code, ok := bootDeviceCodes[device]
	if !ok {
		return [2]byte{}, fmt.Errorf("%w: %q (valid: none, pxe, hdd, cd, bios, usb)", ErrUnknownBootDevice, device)
	}

	b1 := bootFlagValid
	if persistent {
		b1 |= bootFlagPersistent
	}
	if uefi {
		b1 |= bootFlagUEFI
	}
	return [2]byte{b1, code}, nil
}

// ClearBootFlags is the all-zero pair that clears any pending override.
func ClearBootFlags() [2]byte {
	return [2]byte{}
}
