package browser

import "fmt"

// DisplayHeight returns the real-world height of a surface displayWidth wide
// that shows a pixelWidth x pixelHeight image without distortion.
//
// It panics if pixelWidth is not positive or pixelHeight is negative.
func DisplayHeight(displayWidth float32, pixelWidth, pixelHeight int) float32 {
	if pixelWidth <= 0 {
		panic(fmt.Sprintf("browser: DisplayHeight with pixel width %d", pixelWidth))
	}
	if pixelHeight < 0 {
		panic(fmt.Sprintf("browser: DisplayHeight with pixel height %d", pixelHeight))
	}
	return float32(float64(displayWidth) * float64(pixelHeight) / float64(pixelWidth))
}
