// Package audio discovers PulseAudio playback sinks for tone output.
package audio

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"
)

// Device describes one Pulse playback sink.
type Device struct {
	ID          string
	Description string
	State       string
	Available   bool
	Muted       bool
	Default     bool
}

// Selection is the resolved sink plus optional fallback warning context.
type Selection struct {
	Device   Device
	Warning  string
	Fallback bool
}

// ListSinks returns Pulse playback sinks with default/availability metadata.
func ListSinks(_ context.Context) ([]Device, error) {
	client, err := pulse.NewClient(
		pulse.ClientApplicationName("splconfig"),
		pulse.ClientApplicationIconName("audio-speakers"),
	)
	if err != nil {
		return nil, fmt.Errorf("connect pulse server: %w", err)
	}
	defer client.Close()

	defaultSink, err := client.DefaultSink()
	if err != nil {
		return nil, fmt.Errorf("read default sink: %w", err)
	}
	defaultID := defaultSink.ID()

	var sinkInfos pulseproto.GetSinkInfoListReply
	if err := client.RawRequest(&pulseproto.GetSinkInfoList{}, &sinkInfos); err != nil {
		return nil, fmt.Errorf("list sinks: %w", err)
	}

	devices := make([]Device, 0, len(sinkInfos))
	for _, sink := range sinkInfos {
		if sink == nil {
			continue
		}
		devices = append(devices, Device{
			ID:          sink.SinkName,
			Description: sink.Device,
			State:       sinkStateString(sink.State),
			Available:   sinkAvailable(sink),
			Muted:       sink.Mute,
			Default:     sink.SinkName == defaultID,
		})
	}
	return devices, nil
}

// SelectSink resolves indicator.sound_device against live sinks.
func SelectSink(ctx context.Context, preferred string) (Selection, error) {
	devices, err := ListSinks(ctx)
	if err != nil {
		return Selection{}, err
	}
	return selectSinkFromList(devices, preferred)
}

// selectSinkFromList applies selection policy to a pre-fetched sink list. A
// preferred sink that is muted or unavailable falls back to the default sink.
func selectSinkFromList(devices []Device, preferred string) (Selection, error) {
	if len(devices) == 0 {
		return Selection{}, errors.New("no audio output devices found")
	}

	var defaultDevice, byTerm *Device
	preferred = strings.TrimSpace(strings.ToLower(preferred))
	useDefault := preferred == "" || preferred == "default"

	for i := range devices {
		dev := &devices[i]
		if dev.Default {
			defaultDevice = dev
		}
		if byTerm == nil && !useDefault && deviceMatches(*dev, preferred) {
			byTerm = dev
		}
	}

	primary := byTerm
	if useDefault {
		if defaultDevice == nil {
			return Selection{}, errors.New("default audio sink is unavailable")
		}
		primary = defaultDevice
	}
	if primary == nil {
		return Selection{}, fmt.Errorf("indicator.sound_device %q did not match any sink", preferred)
	}
	if primary.Available && !primary.Muted {
		return Selection{Device: *primary}, nil
	}

	reason := "unavailable"
	if primary.Muted {
		reason = "muted"
	}
	if defaultDevice == nil || defaultDevice == primary {
		return Selection{}, fmt.Errorf("audio sink %q is %s and no usable fallback", primary.ID, reason)
	}
	if !defaultDevice.Available {
		return Selection{}, fmt.Errorf("audio fallback sink %q is not available", defaultDevice.ID)
	}
	if defaultDevice.Muted {
		return Selection{}, fmt.Errorf("audio fallback sink %q is muted", defaultDevice.ID)
	}

	return Selection{
		Device:   *defaultDevice,
		Warning:  fmt.Sprintf("indicator.sound_device %q is %s; falling back to %q", primary.ID, reason, defaultDevice.ID),
		Fallback: true,
	}, nil
}

// deviceMatches reports whether a search term matches a device id or description.
func deviceMatches(device Device, term string) bool {
	if term == "" {
		return false
	}
	id := strings.ToLower(device.ID)
	desc := strings.ToLower(device.Description)
	return strings.Contains(id, term) || strings.Contains(desc, term)
}

// sinkStateString maps Pulse sink state constants to human-readable values.
func sinkStateString(state uint32) string {
	switch state {
	case 0:
		return "running"
	case 1:
		return "idle"
	case 2:
		return "suspended"
	default:
		return fmt.Sprintf("unknown(%d)", state)
	}
}

// sinkAvailable maps Pulse sink port availability to a simple boolean.
func sinkAvailable(sink *pulseproto.GetSinkInfoReply) bool {
	if sink == nil {
		return false
	}
	if len(sink.Ports) == 0 {
		return true
	}
	for _, port := range sink.Ports {
		if port.Name != sink.ActivePortName {
			continue
		}
		// PulseAudio values: unknown=0, no=1, yes=2.
		return port.Available == 0 || port.Available == 2
	}
	return true
}
