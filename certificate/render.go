package certificate

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"

	"github.com/fogleman/gg"
	log "github.com/sirupsen/logrus"
	"golang.org/x/image/draw"
)

// RenderError is returned when a certificate image could not be produced
type RenderError struct {
	Step string
	Err  error
}

// Error implements the error interface
func (e *RenderError) Error() string {
	return fmt.Sprintf("render failed at %s: %v", e.Step, e.Err)
}

// Unwrap returns the underlying error
func (e *RenderError) Unwrap() error {
	return e.Err
}

// Renderer draws certificates with a fixed layout onto a Width x Height canvas
type Renderer struct {
	fonts fontSet
}

// NewRenderer creates a Renderer with the embedded Go fonts
func NewRenderer() (*Renderer, error) {
	fonts, err := loadFonts()
	if err != nil {
		return nil, &RenderError{
			Step: "fonts",
			Err:  err,
		}
	}
	return &Renderer{fonts: fonts}, nil
}

// Render returns the PNG encoded certificate. Missing or broken template and
// signature images are skipped.
func (r *Renderer) Render(in Input) ([]byte, error) {
	dc := gg.NewContext(Width, Height)
	dc.SetColor(color.White)
	dc.Clear()

	if bg := decodeAsset("template", in.Template); bg != nil {
		scaled := image.NewRGBA(image.Rect(0, 0, Width, Height))
		draw.CatmullRom.Scale(scaled, scaled.Bounds(), bg, bg.Bounds(), draw.Over, nil)
		dc.DrawImage(scaled, 0, 0)
	}

	dc.SetColor(color.Black)
	faces := r.fonts.newFaceCache()
	for _, b := range layout {
		text := b.text(in)
		if text == "" {
			continue
		}
		drawCentered(dc, faces, b, text)
	}

	if sig := decodeAsset("signature", in.Signature); sig != nil {
		drawSignature(dc, sig)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, &RenderError{
			Step: "encode",
			Err:  err,
		}
	}
	return buf.Bytes(), nil
}

// drawCentered draws the text centered on the block's baseline, shrinking
// the font until the text fits between the margins.
func drawCentered(dc *gg.Context, faces *faceCache, b textBlock, text string) {
	dc.SetFontFace(faces.face(b.font, fitSize(dc, faces, b, text)))
	dc.DrawStringAnchored(text, Width/2, b.y, 0.5, 0)
}

// fitSize returns the largest even step below the block's size at which the
// text fits, but not less than minFontSize. The first guess scales the size
// by the overflow; hinting can leave it slightly too wide.
func fitSize(dc *gg.Context, faces *faceCache, b textBlock, text string) float64 {
	const maxWidth = Width - 2*textMargin
	size := b.size
	dc.SetFontFace(faces.face(b.font, size))
	w, _ := dc.MeasureString(text)
	if w <= maxWidth {
		return size
	}
	size = max(minFontSize, evenFloor(size*maxWidth/w))
	for size > minFontSize {
		dc.SetFontFace(faces.face(b.font, size))
		if w, _ = dc.MeasureString(text); w <= maxWidth {
			break
		}
		size -= 2
	}
	return max(size, minFontSize)
}

func evenFloor(f float64) float64 {
	return float64(int(f/2) * 2)
}

// drawSignature fits the signature into the signature box keeping its aspect
// ratio
func drawSignature(dc *gg.Context, sig image.Image) {
	sb := sig.Bounds()
	if sb.Dx() == 0 || sb.Dy() == 0 {
		return
	}
	scale := min(
		float64(signatureWidth)/float64(sb.Dx()),
		float64(signatureHeight)/float64(sb.Dy()),
	)
	w := max(1, int(float64(sb.Dx())*scale))
	h := max(1, int(float64(sb.Dy())*scale))
	scaled := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), sig, sb, draw.Over, nil)
	dc.DrawImageAnchored(scaled, Width/2, signatureY, 0.5, 0.5)
}

func decodeAsset(kind string, data []byte) image.Image {
	if len(data) == 0 {
		log.WithField("asset", kind).Debug("certificate asset not set, skipping")
		return nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		log.WithField("asset", kind).WithError(err).Warn("could not decode certificate asset, skipping")
		return nil
	}
	return img
}
