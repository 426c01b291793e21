package course

import "fmt"

// Export returns copies of the raw tile layers for snapshotting.
func (c *Course) Export() (terrain []byte, moisture, nutrients, height, health []float64) {
	terrain = make([]byte, len(c.terrain))
	for i, t := range c.terrain {
		terrain[i] = byte(t)
	}
	return terrain,
		append([]float64(nil), c.moisture...),
		append([]float64(nil), c.nutrients...),
		append([]float64(nil), c.height...),
		append([]float64(nil), c.health...)
}

// Restore rebuilds a course from exported layers.
func Restore(w, h int, params Params, terrain []byte, moisture, nutrients, height, health []float64) (*Course, error) {
	n := w * h
	if len(terrain) != n || len(moisture) != n || len(nutrients) != n || len(height) != n || len(health) != n {
		return nil, fmt.Errorf("course restore: layer sizes do not match %dx%d", w, h)
	}
	params.applyDefaults()
	c := &Course{
		W:         w,
		H:         h,
		terrain:   make([]uint8, n),
		moisture:  append([]float64(nil), moisture...),
		nutrients: append([]float64(nil), nutrients...),
		height:    append([]float64(nil), height...),
		health:    append([]float64(nil), health...),
		params:    params,
	}
	for i, t := range terrain {
		if int(t) >= len(palette) {
			return nil, fmt.Errorf("course restore: bad terrain code %d at tile %d", t, i)
		}
		c.terrain[i] = t
	}
	return c, nil
}

// StatsAt exposes the tile under a world position, mainly for tests and the
// observer digest.
func (c *Course) StatsAt(x, z float64) (code string, moisture, nutrients, height, health float64, ok bool) {
	tx := int(x)
	tz := int(z)
	if x < 0 || z < 0 || tx >= c.W || tz >= c.H {
		return "", 0, 0, 0, 0, false
	}
	i := tz*c.W + tx
	return palette[c.terrain[i]], c.moisture[i], c.nutrients[i], c.height[i], c.health[i], true
}
