package extract

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/doc-intake/internal/ocr"
)

type scriptedEngine struct {
	texts   []string
	failAt  map[int]bool
	call    int
	heights []int
}

func (s *scriptedEngine) Recognize(_ context.Context, img image.Image, _ ocr.Mode) (string, error) {
	i := s.call
	s.call++
	s.heights = append(s.heights, img.Bounds().Dy())
	if s.failAt[i] {
		return "", errors.New("recognition failed")
	}
	if i < len(s.texts) {
		return s.texts[i], nil
	}
	return "", nil
}

func pages(n, w, h int) []*image.Gray {
	out := make([]*image.Gray, n)
	for i := range out {
		out[i] = image.NewGray(image.Rect(0, 0, w, h))
	}
	return out
}

func TestExtractConcatenatesPagesInOrder(t *testing.T) {
	eng := &scriptedEngine{texts: []string{"page one", "page two", "page three"}}
	ex := NewExtractor(eng, 0, nil)

	res, err := ex.ExtractPages(context.Background(), pages(3, 50, 100), ocr.ModeDocument)
	require.NoError(t, err)
	assert.Equal(t, "page onepage twopage three", res.Text,
		"page texts run together with no added separator")
	assert.Empty(t, res.FailedPages)
}

func TestExtractPageFailureYieldsEmptyText(t *testing.T) {
	eng := &scriptedEngine{
		texts:  []string{"first", "", "third"},
		failAt: map[int]bool{1: true},
	}
	ex := NewExtractor(eng, 0, nil)

	res, err := ex.ExtractPages(context.Background(), pages(3, 50, 100), ocr.ModeBlock)
	require.NoError(t, err, "a failed page must not fail the document")
	assert.Equal(t, []int{1}, res.FailedPages)
	assert.Equal(t, []string{"first", "", "third"}, res.PageTexts)
	assert.Equal(t, "firstthird", res.Text)
}

func TestExtractCropsHeaderBand(t *testing.T) {
	eng := &scriptedEngine{}
	ex := NewExtractor(eng, 60, nil)

	_, err := ex.ExtractPages(context.Background(), pages(2, 80, 200), ocr.ModeDocument)
	require.NoError(t, err)
	assert.Equal(t, []int{140, 140}, eng.heights, "pages should lose the 60px header")
}

func TestExtractShortPageNotCropped(t *testing.T) {
	eng := &scriptedEngine{}
	ex := NewExtractor(eng, 60, nil)

	_, err := ex.ExtractPages(context.Background(), pages(1, 80, 40), ocr.ModeDocument)
	require.NoError(t, err)
	assert.Equal(t, []int{40}, eng.heights, "pages shorter than the band stay whole")
}

func TestExtractStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ex := NewExtractor(&scriptedEngine{}, 0, nil)

	_, err := ex.ExtractPages(ctx, pages(2, 10, 10), ocr.ModeDocument)
	require.ErrorIs(t, err, context.Canceled)
}
