package certificate

import (
	"github.com/golang/freetype/truetype"
	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// Font selects one of the embedded font families
type Font int

// Fonts
const (
	FontRegular Font = iota
	FontBold
	FontItalic
)

type fontSet map[Font]*truetype.Font

func loadFonts() (fontSet, error) {
	sources := map[Font][]byte{
		FontRegular: goregular.TTF,
		FontBold:    gobold.TTF,
		FontItalic:  goitalic.TTF,
	}
	fonts := make(fontSet, len(sources))
	for k, ttf := range sources {
		f, err := truetype.Parse(ttf)
		if err != nil {
			return nil, errors.Wrapf(err, "could not parse font %d", k)
		}
		fonts[k] = f
	}
	return fonts, nil
}

// face returns a new face; faces keep a glyph cache and must not be shared
// between concurrent renders.
func (fs fontSet) face(f Font, size float64) font.Face {
	ttf, ok := fs[f]
	if !ok {
		ttf = fs[FontRegular]
	}
	return truetype.NewFace(
		ttf, &truetype.Options{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		},
	)
}

type faceKey struct {
	font Font
	size float64
}

// faceCache hands out one face per font and size. A cache belongs to a single
// render.
type faceCache struct {
	fonts fontSet
	faces map[faceKey]font.Face
}

func (fs fontSet) newFaceCache() *faceCache {
	return &faceCache{
		fonts: fs,
		faces: make(map[faceKey]font.Face),
	}
}

func (c *faceCache) face(f Font, size float64) font.Face {
	k := faceKey{
		font: f,
		size: size,
	}
	if face, ok := c.faces[k]; ok {
		return face
	}
	face := c.fonts.face(f, size)
	c.faces[k] = face
	return face
}
