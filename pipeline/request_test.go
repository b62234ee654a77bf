package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaos-io/bgswap/background"
	"github.com/chaos-io/bgswap/compose"
)

func TestParseBackgroundOption(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    BackgroundOption
		wantErr bool
	}{
		{in: "", want: OptionRemoveOnly},
		{in: "remove_only", want: OptionRemoveOnly},
		{in: "Solid_Color", want: OptionSolidColor},
		{in: "preset", want: OptionPreset},
		{in: "custom", want: OptionCustom},
		{in: "Preset Backgrounds", want: OptionPreset},
		{in: "remove only (default)", want: OptionRemoveOnly},
		{in: "gradient", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseBackgroundOption(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownOption)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBackgroundOption_FilePrefix(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "no_bg", OptionRemoveOnly.FilePrefix())
	assert.Equal(t, "solid_color", OptionSolidColor.FilePrefix())
	assert.Equal(t, "preset_backgrounds", OptionPreset.FilePrefix())
	assert.Equal(t, "custom_background", OptionCustom.FilePrefix())
}

func TestNewRequest(t *testing.T) {
	t.Parallel()

	uploads := []Upload{{Name: "a.png", Data: []byte{1}}}

	req, err := NewRequest(OptionRemoveOnly, compose.SolidColor(background.Red), uploads)
	require.NoError(t, err)
	assert.True(t, req.Background().IsNone())
	assert.Equal(t, OptionRemoveOnly, req.Option())
	assert.Equal(t, 1, req.Len())

	_, err = NewRequest(OptionSolidColor, compose.None(), uploads)
	assert.ErrorIs(t, err, ErrNoBackground)

	_, err = NewRequest(OptionCustom, compose.ImageBackground(nil), uploads)
	assert.ErrorIs(t, err, ErrNoBackground)

	_, err = NewRequest(OptionPreset, compose.SolidColor(background.Red), nil)
	assert.ErrorIs(t, err, ErrNoImages)

	_, err = NewRequest("Gradient", compose.SolidColor(background.Red), uploads)
	assert.ErrorIs(t, err, ErrUnknownOption)
}

func TestRequest_IsImmutable(t *testing.T) {
	t.Parallel()

	uploads := []Upload{{Name: "a.png"}, {Name: "b.png"}}
	req, err := NewRequest(OptionRemoveOnly, compose.None(), uploads)
	require.NoError(t, err)

	uploads[0].Name = "changed.png"
	got := req.Uploads()
	assert.Equal(t, "a.png", got[0].Name)

	got[1].Name = "changed.png"
	assert.Equal(t, "b.png", req.Uploads()[1].Name)
}
