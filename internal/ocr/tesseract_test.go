package ocr

import (
	"context"
	"errors"
	"image"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	stdout string
	stderr string
	err    error

	gotName string
	gotArgs []string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.gotName = name
	f.gotArgs = args
	return []byte(f.stdout), []byte(f.stderr), f.err
}

func testImage() image.Image {
	return image.NewGray(image.Rect(0, 0, 4, 4))
}

func TestRecognizePassesModeAndLang(t *testing.T) {
	fr := &fakeRunner{stdout: "hello world\n"}
	e := NewTesseractEngine(Config{Lang: "eng", OEM: 1, CacheDir: t.TempDir()}, nil).WithRunner(fr)

	txt, err := e.Recognize(context.Background(), testImage(), ModeBlock)
	require.NoError(t, err)
	assert.Equal(t, "hello world\n", txt)
	assert.Equal(t, "tesseract", fr.gotName)

	args := strings.Join(fr.gotArgs, " ")
	assert.Contains(t, args, "--psm 6")
	assert.Contains(t, args, "-l eng")
	assert.Contains(t, args, "--oem 1")

	_, err = e.Recognize(context.Background(), testImage(), ModeDocument)
	require.NoError(t, err)
	assert.Contains(t, strings.Join(fr.gotArgs, " "), "--psm 3")
}

func TestRecognizeWrapsRunnerError(t *testing.T) {
	fr := &fakeRunner{err: errors.New("boom"), stderr: "no tessdata"}
	e := NewTesseractEngine(Config{CacheDir: t.TempDir()}, nil).WithRunner(fr)

	_, err := e.Recognize(context.Background(), testImage(), ModeDocument)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no tessdata")
}

func TestDetectRotationParsesOSD(t *testing.T) {
	fr := &fakeRunner{stdout: "Page number: 0\nOrientation in degrees: 270\nRotate: 90\nOrientation confidence: 12.3\n"}
	e := NewTesseractEngine(Config{CacheDir: t.TempDir()}, nil).WithRunner(fr)

	deg, err := e.DetectRotation(context.Background(), testImage())
	require.NoError(t, err)
	assert.Equal(t, 90, deg)
	assert.Contains(t, strings.Join(fr.gotArgs, " "), "--psm 0")
}

func TestParseOSDRotation(t *testing.T) {
	deg, err := ParseOSDRotation("Rotate: 180\n")
	require.NoError(t, err)
	assert.Equal(t, 180, deg)

	deg, err = ParseOSDRotation("  Rotate: 0")
	require.NoError(t, err)
	assert.Equal(t, 0, deg)

	_, err = ParseOSDRotation("Orientation in degrees: 90\n")
	assert.Error(t, err, "missing Rotate line")

	_, err = ParseOSDRotation("Rotate: 45\n")
	assert.Error(t, err, "non-quarter rotation")

	_, err = ParseOSDRotation("Rotate: up\n")
	assert.Error(t, err)
}
