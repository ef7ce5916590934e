// Package adb drives `adb shell getevent` for the touch decoder.
package adb

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"github.com/frudas24/touchsampler/internal/touch"
)

// ErrNoTouchDevice reports that the probe found no multi-touch device.
var ErrNoTouchDevice = errors.New("adb: no multi-touch device found")

// Options select the adb binary and target.
type Options struct {
	ADBPath string
	Serial  string
}

// Device is one input node reported by `getevent -lp`.
type Device struct {
	Path string
	Name string
	// Abs holds the max value of each reported ABS code.
	Abs map[string]int32
}

// MultiTouch reports whether the node reports MT positions.
func (d Device) MultiTouch() bool {
	_, ok := d.Abs[touch.NamePositionX]
	return ok
}

// ProbeResult is the dialect selection for one device.
type ProbeResult struct {
	Device   string
	Name     string
	Protocol touch.Protocol
	// Capacity is ABS_MT_SLOT max+1 for Type B devices and 0 for Type A,
	// which report no contact count.
	Capacity int
	MaxX     int32
	MaxY     int32
}

// Probe runs `getevent -lp` on the device and selects the dialect.
func Probe(ctx context.Context, opts Options, device string) (ProbeResult, error) {
	cmd := exec.CommandContext(ctx, adbPath(opts), shellArgs(opts, "getevent", "-lp")...)
	configureCmd(cmd)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return ProbeResult{}, fmt.Errorf("adb probe: %w: %s", err, msg)
		}
		return ProbeResult{}, fmt.Errorf("adb probe: %w", err)
	}
	return ParseProbe(bytes.NewReader(out), device)
}

// ParseProbe reads `getevent -lp` output. An empty device selects the
// first node reporting ABS_MT_POSITION_X.
func ParseProbe(r io.Reader, device string) (ProbeResult, error) {
	devices, err := ParseDevices(r)
	if err != nil {
		return ProbeResult{}, err
	}
	device = strings.TrimSuffix(strings.TrimSpace(device), ":")
	for _, d := range devices {
		if device != "" && d.Path != device {
			continue
		}
		if device == "" && !d.MultiTouch() {
			continue
		}
		res := ProbeResult{
			Device:   d.Path,
			Name:     d.Name,
			Protocol: touch.ProtocolA,
			MaxX:     d.Abs[touch.NamePositionX],
			MaxY:     d.Abs[touch.NamePositionY],
		}
		if maxSlot, ok := d.Abs[touch.NameSlot]; ok {
			res.Protocol = touch.ProtocolB
			res.Capacity = int(maxSlot) + 1
		}
		return res, nil
	}
	if device != "" {
		return ProbeResult{}, fmt.Errorf("%w: %s not listed", ErrNoTouchDevice, device)
	}
	return ProbeResult{}, ErrNoTouchDevice
}

// ParseDevices splits `getevent -lp` output into devices.
func ParseDevices(r io.Reader) ([]Device, error) {
	var (
		devices []Device
		cur     *Device
	)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case strings.HasPrefix(line, "add device"):
			_, path, ok := strings.Cut(line, ": ")
			if !ok {
				continue
			}
			devices = append(devices, Device{Path: strings.TrimSpace(path), Abs: map[string]int32{}})
			cur = &devices[len(devices)-1]
		case cur == nil:
		case strings.HasPrefix(line, "name:"):
			cur.Name = strings.Trim(strings.TrimSpace(strings.TrimPrefix(line, "name:")), `"`)
		default:
			if code, max, ok := parseAbsLine(line); ok {
				cur.Abs[code] = max
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("adb probe: %w", err)
	}
	return devices, nil
}

// parseAbsLine extracts the code and max from a line such as
// "ABS (0003): ABS_MT_SLOT : value 0, min 0, max 9, fuzz 0, flat 0, resolution 0".
func parseAbsLine(line string) (string, int32, bool) {
	if _, rest, ok := strings.Cut(line, "):"); ok {
		line = strings.TrimSpace(rest)
	}
	if !strings.HasPrefix(line, "ABS_") {
		return "", 0, false
	}
	code, attrs, ok := strings.Cut(line, ":")
	if !ok {
		return "", 0, false
	}
	for _, attr := range strings.Split(attrs, ",") {
		name, value, ok := strings.Cut(strings.TrimSpace(attr), " ")
		if !ok || name != "max" {
			continue
		}
		v, err := strconv.ParseInt(strings.TrimSpace(value), 10, 32)
		if err != nil {
			return "", 0, false
		}
		return strings.TrimSpace(code), int32(v), true
	}
	return "", 0, false
}

// adbPath returns the configured binary or "adb".
func adbPath(opts Options) string {
	if opts.ADBPath == "" {
		return "adb"
	}
	return opts.ADBPath
}

// shellArgs builds `[-s serial] shell cmd...`.
func shellArgs(opts Options, cmd ...string) []string {
	var args []string
	if opts.Serial != "" {
		args = append(args, "-s", opts.Serial)
	}
	args = append(args, "shell")
	return append(args, cmd...)
}
