// Package aoa implements the Android Open Accessory 2.0 HID protocol.
// It sends HID input events directly to an Android device over USB without
// requiring ADB, developer mode, or any setup on the Android side.
//
// Protocol reference: https://source.android.com/docs/core/interaction/accessories/aoa2
package aoa

import (
	"fmt"
	"time"

	"github.com/google/gousb"
)

const (
	// Standard Google AOA vendor/product IDs, assigned once a device has
	// already switched into accessory mode. Any AOA2 host identifies
	// itself with one of these, regardless of make or model.
	aoaVendorID            = 0x18d1
	aoaProductAccessory    = 0x2d00
	aoaProductAccessoryAdb = 0x2d01

	// AOA HID control transfer request codes (bRequest values)
	reqRegisterHID   = 54 // ACCESSORY_REGISTER_HID
	reqUnregisterHID = 55 // ACCESSORY_UNREGISTER_HID
	reqSetHIDDesc    = 56 // ACCESSORY_SET_HID_REPORT_DESC
	reqSendHIDEvent  = 57 // ACCESSORY_SEND_HID_EVENT

	// bmRequestType for all AOA HID transfers:
	// host-to-device (0x00) | vendor (0x40) | device recipient (0x00) = 0x40
	bmRequestTypeOut = 0x40
)

// DescriptorType identifies which HID descriptor to use.
type DescriptorType int

const (
	DescKeyboard       DescriptorType = iota // Standard Keyboard (Usage Page 0x07)
	DescConsumerControl                      // Consumer Control (Usage Page 0x0C)
)

func (d DescriptorType) String() string {
	switch d {
	case DescKeyboard:
		return "Keyboard (0x07)"
	case DescConsumerControl:
		return "Consumer Control (0x0C)"
	default:
		return "Unknown"
	}
}

// Keyboard HID report descriptor.
// 8-byte reports: [modifier, reserved, key1, key2, key3, key4, key5, key6]
var keyboardDescriptor = []byte{
	0x05, 0x01, // Usage Page (Generic Desktop)
	0x09, 0x06, // Usage (Keyboard)
	0xA1, 0x01, // Collection (Application)
	// Modifier byte (8 bits: Ctrl, Shift, Alt, GUI x2)
	0x05, 0x07, //   Usage Page (Keyboard/Keypad)
	0x19, 0xE0, //   Usage Minimum (Left Control)
	0x29, 0xE7, //   Usage Maximum (Right GUI)
	0x15, 0x00, //   Logical Minimum (0)
	0x25, 0x01, //   Logical Maximum (1)
	0x75, 0x01, //   Report Size (1)
	0x95, 0x08, //   Report Count (8)
	0x81, 0x02, //   Input (Data, Variable, Absolute) — modifier byte
	// Reserved byte
	0x95, 0x01, //   Report Count (1)
	0x75, 0x08, //   Report Size (8)
	0x81, 0x01, //   Input (Constant) — reserved byte
	// Key array (6 keys)
	0x95, 0x06, //   Report Count (6)
	0x75, 0x08, //   Report Size (8)
	0x15, 0x00, //   Logical Minimum (0)
	0x26, 0xFF, 0x00, // Logical Maximum (255)
	0x05, 0x07, //   Usage Page (Keyboard/Keypad)
	0x19, 0x00, //   Usage Minimum (0)
	0x29, 0xFF, //   Usage Maximum (255)
	0x81, 0x00, //   Input (Data, Array)
	0xC0, // End Collection
}

// Consumer Control HID report descriptor.
// 2-byte report: 16-bit usage value (little-endian).
var consumerDescriptor = []byte{
	0x05, 0x0C, // Usage Page (Consumer)
	0x09, 0x01, // Usage (Consumer Control)
	0xA1, 0x01, // Collection (Application)
	0x15, 0x00, // Logical Minimum (0)
	0x26, 0xFF, 0x0F, // Logical Maximum (4095)
	0x19, 0x00, // Usage Minimum (0)
	0x2A, 0xFF, 0x0F, // Usage Maximum (4095)
	0x75, 0x10, // Report Size (16 bits)
	0x95, 0x01, // Report Count (1)
	0x81, 0x00, // Input (Data, Array)
	0xC0, // End Collection
}

// GetDescriptor returns the raw HID descriptor for the given type.
func GetDescriptor(dt DescriptorType) []byte {
	switch dt {
	case DescKeyboard:
		return keyboardDescriptor
	case DescConsumerControl:
		return consumerDescriptor
	default:
		return nil
	}
}

// Device wraps a libusb handle to an Android device with AOA HID set up.
type Device struct {
	ctx        *gousb.Context
	dev        *gousb.Device
	serial     string
	nextHIDID  uint16   // next HID ID to assign
	registered []uint16 // all registered HID IDs for cleanup
}

// Open finds a connected AOA2 accessory device and opens a USB
// connection to it (no HID registration yet). serial, if non-empty,
// restricts the match to a device reporting that serial number.
func Open(serial string) (*Device, error) {
	ctx := gousb.NewContext()

	devs, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return desc.Vendor == aoaVendorID &&
			(desc.Product == aoaProductAccessory || desc.Product == aoaProductAccessoryAdb)
	})
	if err != nil && len(devs) == 0 {
		ctx.Close()
		return nil, fmt.Errorf("no AOA2 accessory device found (VID:0x%04x): %w", aoaVendorID, err)
	}

	var dev *gousb.Device
	for _, d := range devs {
		s, _ := d.SerialNumber()
		if dev == nil && (serial == "" || s == serial) {
			dev = d
		} else {
			d.Close()
		}
	}
	if dev == nil {
		ctx.Close()
		return nil, fmt.Errorf("AOA2 accessory with serial %q not found", serial)
	}

	dev.SetAutoDetach(true)

	return &Device{ctx: ctx, dev: dev, nextHIDID: 1}, nil
}

// RegisterDescriptor registers an HID descriptor with the device via AOA2.
// Returns the assigned HID ID for use with SendReportTo.
func (d *Device) RegisterDescriptor(dt DescriptorType) (uint16, error) {
	desc := GetDescriptor(dt)
	if desc == nil {
		return 0, fmt.Errorf("unknown descriptor type %d", dt)
	}

	id := d.nextHIDID
	d.nextHIDID++

	// Register HID device (wValue = HID ID, wIndex = descriptor length)
	if err := d.controlTransfer(reqRegisterHID, id, uint16(len(desc)), nil); err != nil {
		return 0, fmt.Errorf("REGISTER_HID failed: %w", err)
	}

	// Send the HID report descriptor
	if err := d.controlTransfer(reqSetHIDDesc, id, 0, desc); err != nil {
		_ = d.controlTransfer(reqUnregisterHID, id, 0, nil)
		return 0, fmt.Errorf("SET_HID_REPORT_DESC failed: %w", err)
	}

	// Give Android time to create the input device
	time.Sleep(300 * time.Millisecond)

	d.registered = append(d.registered, id)
	return id, nil
}

// SendReportTo sends a raw HID report to a specific descriptor by HID ID.
func (d *Device) SendReportTo(hidID uint16, report []byte) error {
	return d.controlTransfer(reqSendHIDEvent, hidID, 0, report)
}

// Ping checks if the device is still connected by reading its serial number.
func (d *Device) Ping() error {
	_, err := d.dev.SerialNumber()
	return err
}

// Close releases USB resources.
func (d *Device) Close() {
	for _, id := range d.registered {
		_ = d.controlTransfer(reqUnregisterHID, id, 0, nil)
	}
	d.registered = nil
	d.dev.Close()
	d.ctx.Close()
}

// controlTransfer sends a vendor control transfer to the device.
func (d *Device) controlTransfer(bRequest uint8, wValue uint16, wIndex uint16, data []byte) error {
	if data == nil {
		data = []byte{}
	}
	_, err := d.dev.Control(
		bmRequestTypeOut,
		bRequest,
		wValue,
		wIndex,
		data,
	)
	if err != nil {
		return fmt.Errorf("control transfer (req=%d wValue=%d wIndex=%d): %w", bRequest, wValue, wIndex, err)
	}
	return nil
}
