package background

import "image"

const (
	patternSpacing  = 50
	patternDiameter = 20
)

var (
	PatternBase = Color{R: 240, G: 240, B: 250}
	PatternDot  = Color{R: 200, G: 200, B: 230}
)

// MakePattern 生成浅色底 + 圆点网格的背景。
//
// 圆点直径 20，外接框左上角落在 50 像素网格的每个交点 (x, y)（x < width, y < height）。
// 靠近右边和下边的圆点会被画布裁掉，这是预期行为。
func MakePattern(width, height int) *image.RGBA {
	img := Fill(PatternBase, width, height)
	if width <= 0 || height <= 0 {
		return img
	}

	for x := 0; x < width; x += patternSpacing {
		for y := 0; y < height; y += patternSpacing {
			fillCircle(img, x, y, patternDiameter, PatternDot)
		}
	}
	return img
}

// fillCircle 在外接框 [x0, x0+d) x [y0, y0+d) 内画实心圆，像素中心落在圆内即填充
func fillCircle(img *image.RGBA, x0, y0, d int, c Color) {
	r := float64(d) / 2
	cx := float64(x0) + r
	cy := float64(y0) + r
	rect := image.Rect(x0, y0, x0+d+1, y0+d+1).Intersect(img.Rect)

	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		dy := float64(y) + 0.5 - cy
		for x := rect.Min.X; x < rect.Max.X; x++ {
			dx := float64(x) + 0.5 - cx
			if dx*dx+dy*dy > r*r {
				continue
			}
			i := img.PixOffset(x, y)
			img.Pix[i] = c.R
			img.Pix[i+1] = c.G
			img.Pix[i+2] = c.B
			img.Pix[i+3] = 0xff
		}
	}
}
