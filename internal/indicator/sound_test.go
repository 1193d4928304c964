package indicator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCueSamplesPresent(t *testing.T) {
	require.NotEmpty(t, cueSamples(cueStart))
	require.NotEmpty(t, cueSamples(cueStop))
	require.NotEmpty(t, cueSamples(cueError))
	require.Empty(t, cueSamples(cueKind(99)))
}

func TestSynthesizeCueInsertsGaps(t *testing.T) {
	tone := toneSpec{frequencyHz: 440, duration: 50 * time.Millisecond, volume: 0.2}
	got := synthesizeCue([]toneSpec{tone, tone})
	want := 2*samplesForDuration(50*time.Millisecond) + samplesForDuration(20*time.Millisecond)
	require.Len(t, got, want)
}

func TestSynthesizeToneDurationAndEnvelope(t *testing.T) {
	got := synthesizeTone(toneSpec{frequencyHz: 440, duration: 100 * time.Millisecond, volume: 0.2})
	require.Len(t, got, samplesForDuration(100*time.Millisecond))
	require.Equal(t, int16(0), got[0])
	require.Equal(t, int16(0), got[len(got)-1])

	peak := int16(0)
	for _, sample := range got {
		peak = max(peak, sample)
	}
	require.LessOrEqual(t, int(peak), int(0.2*32767)+1)
}

func TestSynthesizeToneInvalidSpecReturnsEmpty(t *testing.T) {
	require.Empty(t, synthesizeTone(toneSpec{frequencyHz: 0, duration: 100 * time.Millisecond, volume: 0.2}))
	require.Empty(t, synthesizeTone(toneSpec{frequencyHz: 440, duration: 0, volume: 0.2}))
	require.Empty(t, synthesizeTone(toneSpec{frequencyHz: 440, duration: 100 * time.Millisecond, volume: 0}))
}

func TestEmitCueRespectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := emitCue(ctx, cueStart)
	require.Error(t, err)
	require.True(t, errors.Is(err, context.Canceled))
}
