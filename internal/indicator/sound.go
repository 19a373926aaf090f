package indicator

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jfreymuth/pulse"
)

const (
	toneSampleRate = 16000
	toneVolume     = 0.18
)

type toneSpec struct {
	frequencyHz float64
	duration    time.Duration
	volume      float64
}

// Beep is a named tone.
type Beep struct {
	FrequencyHz float64
	Duration    time.Duration
}

var (
	// BeepSwitch marks entry into a switched profile.
	BeepSwitch = Beep{FrequencyHz: 660, Duration: 120 * time.Millisecond}
	// BeepReturn marks the return to the previous profile.
	BeepReturn = Beep{FrequencyHz: 440, Duration: 120 * time.Millisecond}
	// BeepError accompanies refused operations.
	BeepError = Beep{FrequencyHz: 220, Duration: 200 * time.Millisecond}
)

// Play sends b through out.
func Play(ctx context.Context, out Output, b Beep) {
	out.Tone(ctx, b.FrequencyHz, b.Duration)
}

func playSynthTone(samples []int16, sinkID string) error {
	client, err := pulse.NewClient(
		pulse.ClientApplicationName("splconfig"),
		pulse.ClientApplicationIconName("preferences-system"),
	)
	if err != nil {
		return fmt.Errorf("connect pulse server: %w", err)
	}
	defer client.Close()

	cursor := 0
	reader := pulse.Int16Reader(func(buf []int16) (int, error) {
		if cursor >= len(samples) {
			return 0, pulse.EndOfData
		}

		n := copy(buf, samples[cursor:])
		cursor += n
		if cursor >= len(samples) {
			return n, pulse.EndOfData
		}
		return n, nil
	})

	opts := []pulse.PlaybackOption{
		pulse.PlaybackMono,
		pulse.PlaybackSampleRate(toneSampleRate),
		pulse.PlaybackLatency(0.02),
		pulse.PlaybackMediaName("splconfig tone"),
	}
	if sinkID != "" {
		sink, err := client.SinkByID(sinkID)
		if err != nil {
			return fmt.Errorf("resolve sink %q: %w", sinkID, err)
		}
		opts = append(opts, pulse.PlaybackSink(sink))
	}

	stream, err := client.NewPlayback(reader, opts...)
	if err != nil {
		return fmt.Errorf("create pulse playback stream: %w", err)
	}
	defer stream.Close()

	stream.Start()
	stream.Drain()
	if err := stream.Error(); err != nil {
		return fmt.Errorf("play tone stream: %w", err)
	}

	return nil
}

func synthesizeTone(spec toneSpec) []int16 {
	n := samplesForDuration(spec.duration)
	if n <= 0 || spec.frequencyHz <= 0 || spec.volume <= 0 {
		return nil
	}

	attackRelease := min(n/10, toneSampleRate/200) // at most 5ms
	attackRelease = max(attackRelease, 1)

	pcm := make([]int16, n)
	for i := 0; i < n; i++ {
		envelope := 1.0
		if i < attackRelease {
			envelope = float64(i) / float64(attackRelease)
		}
		if releaseIndex := n - i - 1; releaseIndex < attackRelease {
			envelope = min(envelope, float64(releaseIndex)/float64(attackRelease))
		}
		t := float64(i) / toneSampleRate
		pcm[i] = int16(math.Round(math.Sin(2*math.Pi*spec.frequencyHz*t) * spec.volume * envelope * 32767))
	}

	return pcm
}

func samplesForDuration(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Round(d.Seconds() * toneSampleRate))
}
