package background

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakePattern_Size(t *testing.T) {
	t.Parallel()

	for _, size := range [][2]int{{800, 600}, {1, 1}, {49, 51}, {123, 7}} {
		img := MakePattern(size[0], size[1])
		assert.Equal(t, size[0], img.Bounds().Dx())
		assert.Equal(t, size[1], img.Bounds().Dy())
		assert.True(t, img.Opaque())
	}
}

func TestMakePattern_CircleCenters(t *testing.T) {
	t.Parallel()

	const w, h = 230, 170
	img := MakePattern(w, h)

	for x := 0; x < w; x += 50 {
		for y := 0; y < h; y += 50 {
			if x+patternDiameter > w || y+patternDiameter > h {
				continue
			}
			assert.Equal(t, PatternDot, rgbAt(t, img.At(x+10, y+10)), "center of dot at (%d,%d)", x, y)
		}
	}
}

func TestMakePattern_Background(t *testing.T) {
	t.Parallel()

	img := MakePattern(200, 200)
	// gaps between dots and the bounding box corners stay base colored
	assert.Equal(t, PatternBase, rgbAt(t, img.At(35, 35)))
	assert.Equal(t, PatternBase, rgbAt(t, img.At(0, 0)))
	assert.Equal(t, PatternBase, rgbAt(t, img.At(70, 50)))
}

func TestMakePattern_ClipsAtEdge(t *testing.T) {
	t.Parallel()

	// dot at (50, 0) is cut off at x = 55
	img := MakePattern(55, 30)
	assert.Equal(t, PatternDot, rgbAt(t, img.At(54, 10)))
	assert.Equal(t, PatternBase, rgbAt(t, img.At(40, 10)))
}
