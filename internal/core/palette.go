package core

import (
	"math/rand/v2"
	"sync"
)

// defaultColors is the fixed palette players are assigned from.
var defaultColors = []string{
	"#4c72b0",
	"#dd8452",
	"#55a868",
	"#c44e52",
	"#8172b3",
	"#937860",
	"#da8bc3",
	"#8c8c8c",
	"#ccb974",
	"#64b5cd",
}

// Palette hands out colors round-robin from a fixed list. The first call
// picks a random starting index; every call after that advances by one.
// One Palette is shared by all rooms.
type Palette struct {
	mu      sync.Mutex
	colors  []string
	cursor  int
	started bool
}

// NewPalette builds a palette over the default color list.
func NewPalette() *Palette {
	return &Palette{colors: defaultColors}
}

// Next returns the color at the current cursor and advances it.
func (p *Palette) Next() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		p.cursor = rand.IntN(len(p.colors))
		p.started = true
	}

	color := p.colors[p.cursor]
	p.cursor = (p.cursor + 1) % len(p.colors)
	return color
}
