package action

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeParseRoundTrip(t *testing.T) {
	cases := []Action{
		TaskDone(12),
		TaskUndone(12),
		TaskCancel(7),
		TaskPostpone(12, 2),
		CaptureNow(),
		SkipTonight(),
	}
	for _, a := range cases {
		t.Run(a.Encode(), func(t *testing.T) {
			got, err := Parse(a.Encode())
			require.NoError(t, err)
			assert.Equal(t, a, got)
			assert.LessOrEqual(t, len(a.Encode()), 64)
		})
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, data := range []string{
		"",
		"t",
		"t:12",
		"t:x:done",
		"t:12:explode",
		"t:12:postpone",
		"t:12:postpone:zero",
		"t:12:postpone:0",
		"new:later",
		"old:done",
	} {
		t.Run(data, func(t *testing.T) {
			_, err := Parse(data)
			assert.Error(t, err)
		})
	}
}

func TestTokens(t *testing.T) {
	assert.Equal(t, "done", TaskDone(1).Token())
	assert.Equal(t, "postpone:3", TaskPostpone(1, 3).Token())
	assert.Equal(t, "t:12:postpone:2", TaskPostpone(12, 2).Encode())
	assert.Equal(t, "new:skipTonight", SkipTonight().Encode())
}
