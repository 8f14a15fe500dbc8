package meme

// Placement holds the vertical position of every line in a block.
type Placement struct {
	StartY int   // top of the first line
	Y      []int // top of each line, in block order
	Total  int   // sum of all line heights
}

// Place anchors a block of lines with the given heights to the bottom of an
// image, leaving bottomMargin pixels below the last line. Each line advances
// the running offset by its own height.
//
// When the block plus margin is taller than the image, StartY is negative and
// the top of the caption falls off the canvas. That is expected: the value is
// neither clamped nor reported as an error.
func Place(heights []int, imageHeight, bottomMargin int) Placement {
	total := 0
	for _, h := range heights {
		total += h
	}

	p := Placement{
		StartY: imageHeight - total - bottomMargin,
		Y:      make([]int, len(heights)),
		Total:  total,
	}

	y := p.StartY
	for i, h := range heights {
		p.Y[i] = y
		y += h
	}
	return p
}
