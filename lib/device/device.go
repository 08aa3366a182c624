// Package device opens drawing tablets over USB HID and streams their raw
// input reports.
package device

import (
	"fmt"
	"strings"

	"rafaelmartins.com/p/usbhid"

	"strumboli/lib/config"
)

// Report is one raw HID input report. Data carries the report id at index 0,
// so mapping byte indexes line up with what the device documents.
type Report struct {
	ID   byte
	Data []byte
}

// Device is one opened tablet HID interface.
type Device struct {
	dev *usbhid.Device
}

// matches reports whether a HID device is the tablet a profile describes.
// Numeric ids win when the profile has them; otherwise the product name is
// matched as a case-insensitive substring.
func matches(t config.Tablet, dev *usbhid.Device) bool {
	if t.VendorID != 0 || t.ProductID != 0 {
		return dev.VendorId() == t.VendorID && dev.ProductId() == t.ProductID
	}
	if t.Product == "" {
		return false
	}
	return strings.Contains(strings.ToLower(dev.Product()), strings.ToLower(t.Product))
}

// Enumerate lists every HID device matching the profile without opening any.
// Tablets commonly expose several interfaces (stylus and frame buttons
// separately); each comes back as its own entry.
func Enumerate(t config.Tablet) ([]*usbhid.Device, error) {
	devices, err := usbhid.Enumerate(func(dev *usbhid.Device) bool {
		return matches(t, dev)
	})
	if err != nil {
		return nil, fmt.Errorf("device: enumerate: %w", err)
	}
	return devices, nil
}

// Open opens every interface of the configured tablet.
func Open(t config.Tablet) ([]*Device, error) {
	devices, err := Enumerate(t)
	if err != nil {
		return nil, err
	}
	if len(devices) == 0 {
		return nil, fmt.Errorf("device: no tablet matching %q found", t.Product)
	}

	var out []*Device
	for _, dev := range devices {
		if err := dev.Open(true); err != nil {
			for _, d := range out {
				d.Close()
			}
			return nil, fmt.Errorf("device: open %s: %w", dev.Product(), err)
		}
		out = append(out, &Device{dev: dev})
	}
	return out, nil
}

func (d *Device) Product() string      { return d.dev.Product() }
func (d *Device) SerialNumber() string { return d.dev.SerialNumber() }

// ReadReports blocks reading input reports into ch until the device goes
// away or is closed. The returned error reports why reading stopped.
func (d *Device) ReadReports(ch chan<- Report) error {
	for {
		id, buf, err := d.dev.GetInputReport()
		if err != nil {
			return fmt.Errorf("device: read %s: %w", d.dev.Product(), err)
		}
		data := make([]byte, 0, len(buf)+1)
		data = append(data, id)
		data = append(data, buf...)
		ch <- Report{ID: id, Data: data}
	}
}

func (d *Device) Close() error {
	return d.dev.Close()
}
