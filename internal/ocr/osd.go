package ocr

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseOSDRotation pulls the "Rotate: N" line out of a tesseract --psm 0
// report. N is the clockwise rotation that brings the page upright and is
// always a multiple of 90.
func ParseOSDRotation(report string) (int, error) {
	for _, line := range strings.Split(report, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "Rotate:") {
			continue
		}
		v := strings.TrimSpace(strings.TrimPrefix(line, "Rotate:"))
		deg, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("bad rotate value %q: %w", v, err)
		}
		deg = ((deg % 360) + 360) % 360
		if deg%90 != 0 {
			return 0, fmt.Errorf("rotation %d is not a quarter turn", deg)
		}
		return deg, nil
	}
	return 0, fmt.Errorf("no Rotate line in osd report")
}
