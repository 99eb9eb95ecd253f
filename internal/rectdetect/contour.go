package rectdetect

import "sort"

// contour is one connected edge component with its bounding box and the
// area it encloses. The enclosed area is estimated from per-row spans of
// the component, which matches the filled area of a closed boundary.
type contour struct {
	minX, minY int
	maxX, maxY int
	area       int
}

func (c contour) boxWidth() int  { return c.maxX - c.minX + 1 }
func (c contour) boxHeight() int { return c.maxY - c.minY + 1 }
func (c contour) boxArea() int   { return c.boxWidth() * c.boxHeight() }

// findContours extracts the external contours of a binary edge image as
// 8-connected components, sorted by enclosed area descending, dropping
// components enclosing less than minAreaFrac of the image and keeping at
// most maxContours.
func findContours(edges [][]uint8, minAreaFrac float64, maxContours int) []contour {
	h := len(edges)
	if h == 0 {
		return nil
	}
	w := len(edges[0])

	visited := make([][]bool, h)
	for y := range visited {
		visited[y] = make([]bool, w)
	}

	var contours []contour
	var stack [][2]int
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if edges[y][x] == 0 || visited[y][x] {
				continue
			}

			// Flood one component, tracking the horizontal span per row.
			rowMin := map[int]int{}
			rowMax := map[int]int{}
			c := contour{minX: x, minY: y, maxX: x, maxY: y}

			visited[y][x] = true
			stack = append(stack[:0], [2]int{x, y})
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				px, py := p[0], p[1]

				c.minX = min(c.minX, px)
				c.minY = min(c.minY, py)
				c.maxX = max(c.maxX, px)
				c.maxY = max(c.maxY, py)
				if lo, ok := rowMin[py]; !ok || px < lo {
					rowMin[py] = px
				}
				if hi, ok := rowMax[py]; !ok || px > hi {
					rowMax[py] = px
				}

				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						nx, ny := px+dx, py+dy
						if nx < 0 || ny < 0 || nx >= w || ny >= h {
							continue
						}
						if edges[ny][nx] != 0 && !visited[ny][nx] {
							visited[ny][nx] = true
							stack = append(stack, [2]int{nx, ny})
						}
					}
				}
			}

			for row, lo := range rowMin {
				c.area += rowMax[row] - lo + 1
			}
			contours = append(contours, c)
		}
	}

	sort.Slice(contours, func(i, j int) bool { return contours[i].area > contours[j].area })

	minArea := float64(w*h) * minAreaFrac
	filtered := contours[:0]
	for _, c := range contours {
		if float64(c.area) > minArea {
			filtered = append(filtered, c)
		}
	}
	if len(filtered) > maxContours {
		filtered = filtered[:maxContours]
	}
	return filtered
}
