package graph

import "fmt"

// rainbow interpolates edge colours across a hop's node index so edges stay
// distinguishable in large graphs; monochrome configurations get plain black.
func rainbow(index, total int, coloured bool) string {
	if !coloured || total <= 0 {
		return "#000000"
	}
	r, g, b := hsvToRGB(float64(index)/float64(total), 1.0, 1.0)
	return fmt.Sprintf("#%02x%02x%02x", int(255*r), int(255*g), int(255*b))
}

func hsvToRGB(h, s, v float64) (float64, float64, float64) {
	if s == 0 {
		return v, v, v
	}
	i := int(h * 6.0)
	f := h*6.0 - float64(i)
	p := v * (1.0 - s)
	q := v * (1.0 - s*f)
	t := v * (1.0 - s*(1.0-f))
	switch i % 6 {
	case 0:
		return v, t, p
	case 1:
		return q, v, p
	case 2:
		return p, v, t
	case 3:
		return p, q, v
	case 4:
		return t, p, v
	default:
		return v, p, q
	}
}
