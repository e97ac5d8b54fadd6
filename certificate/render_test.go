package certificate

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/fogleman/gg"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/certhouse/certhouse/storage/model"
)

func solidPNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func testInput() Input {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	return Input{
		LicenseNumber: "CERT-T1-P2-ABC-0123456789AB",
		FirstName:     "Jane",
		TrainingID:    1,
		TrainingName:  "Fire Safety",
		StartsAt:      start,
		EndsAt:        start.Add(8 * time.Hour),
		Location:      "Berlin",
		SignatoryName: "Dr. A. Smith",
		RoleLabel:     "Head of Training",
	}
}

func decodePNG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func isWhite(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r == 0xffff && g == 0xffff && b == 0xffff
}

func TestRender_SizeAndDeterminism(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	first, err := r.Render(testInput())
	require.NoError(t, err)
	second, err := r.Render(testInput())
	require.NoError(t, err)
	assert.True(t, bytes.Equal(first, second), "rendering the same input must be pixel identical")

	img := decodePNG(t, first)
	assert.Equal(t, Width, img.Bounds().Dx())
	assert.Equal(t, Height, img.Bounds().Dy())
	// no template: white canvas
	assert.True(t, isWhite(img.At(2, 2)))
}

func TestRender_Template(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	in := testInput()
	in.Template = solidPNG(t, 30, 20, color.RGBA{R: 200, A: 255})
	in.Signature = solidPNG(t, 40, 10, color.RGBA{B: 255, A: 255})

	img := decodePNG(t, mustRender(t, r, in))
	red, g, b, _ := img.At(2, 2).RGBA()
	assert.Greater(t, red, g)
	assert.Greater(t, red, b)

	sig := img.At(Width/2, signatureY)
	_, _, blue, _ := sig.RGBA()
	sr, _, _, _ := sig.RGBA()
	assert.Greater(t, blue, sr)
}

func TestRender_BrokenAssetsDegrade(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	in := testInput()
	in.Template = []byte("not an image")
	in.Signature = []byte{0x89, 'P', 'N', 'G'}

	img := decodePNG(t, mustRender(t, r, in))
	assert.True(t, isWhite(img.At(2, 2)))
	assert.Equal(t, Width, img.Bounds().Dx())
}

func mustRender(t *testing.T, r *Renderer, in Input) []byte {
	t.Helper()
	out, err := r.Render(in)
	require.NoError(t, err)
	return out
}

func TestLines(t *testing.T) {
	in := testInput()
	lines := Lines(in)
	assert.Equal(t, "Jane", lines["name"])
	assert.Equal(t, "No. CERT-T1-P2-ABC-0123456789AB", lines["license"])
	assert.Equal(t, "2 March 2026, Berlin", lines["schedule"])
	assert.NotContains(t, lines, "certifying_body")
	assert.NotContains(t, lines, "department")

	in.Variant = "accredited"
	in.CertifyingBody = "Safety Board"
	in.Department = "Logistics"
	in.Company = "ACME"
	in.TrainingName = ""
	in.EndsAt = in.StartsAt.AddDate(0, 0, 2)
	lines = Lines(in)
	assert.Equal(t, "Safety Board", lines["certifying_body"])
	assert.Equal(t, "Logistics, ACME", lines["department"])
	assert.Equal(t, "Training #1", lines["course"])
	assert.Equal(t, "2 March 2026 - 4 March 2026, Berlin", lines["schedule"])
}

func TestAssetResolver(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "templates/fire.png", []byte("explicit"), 0o644))
	require.NoError(t, util.WriteFile(fs, LegacyTemplateName(4), []byte("legacy"), 0o644))
	require.NoError(t, util.WriteFile(fs, "signatures/smith.png", []byte("sig"), 0o644))
	r := AssetResolver{FS: fs}

	legacyID := uint(4)
	data, err := r.Template(model.Training{TemplateImage: "templates/fire.png", TemplateID: &legacyID})
	require.NoError(t, err)
	assert.Equal(t, "explicit", string(data))

	data, err = r.Template(model.Training{TemplateID: &legacyID})
	require.NoError(t, err)
	assert.Equal(t, "legacy", string(data))

	data, err = r.Template(model.Training{TemplateImage: "templates/missing.png"})
	require.NoError(t, err)
	assert.Nil(t, data)

	data, err = r.Signature(model.Training{SignatureImage: "/signatures/smith.png"})
	require.NoError(t, err)
	assert.Equal(t, "sig", string(data))

	data, err = r.Signature(model.Training{})
	require.NoError(t, err)
	assert.Nil(t, data)

	_, err = r.Signature(model.Training{SignatureImage: "../etc/passwd"})
	assert.Error(t, err)
}

func TestFaceCache(t *testing.T) {
	fonts, err := loadFonts()
	require.NoError(t, err)
	faces := fonts.newFaceCache()

	a := faces.face(FontBold, 40)
	assert.Same(t, a, faces.face(FontBold, 40))
	assert.NotSame(t, a, faces.face(FontBold, 38))
	assert.NotSame(t, a, faces.face(FontRegular, 40))
	assert.Len(t, faces.faces, 3)
}

func TestFitSize(t *testing.T) {
	fonts, err := loadFonts()
	require.NoError(t, err)
	faces := fonts.newFaceCache()
	dc := gg.NewContext(Width, Height)
	b := textBlock{
		font: FontBold,
		size: 48,
	}

	assert.Equal(t, 48.0, fitSize(dc, faces, b, "Jane Doe"))

	long := strings.Repeat("Very Long Participant Name ", 3)
	size := fitSize(dc, faces, b, long)
	assert.Less(t, size, 48.0)
	assert.GreaterOrEqual(t, size, float64(minFontSize))
	dc.SetFontFace(faces.face(b.font, size))
	w, _ := dc.MeasureString(long)
	assert.LessOrEqual(t, w, float64(Width-2*textMargin))

	huge := strings.Repeat("W", 2000)
	assert.Equal(t, float64(minFontSize), fitSize(dc, faces, b, huge))
}
