// Package pdfutil reads scanned-PDF page images and rebuilds PDFs from
// corrected pages, via pdfcpu.
package pdfutil

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	_ "image/jpeg"

	_ "golang.org/x/image/tiff"
)

// PageCount returns the number of pages in a PDF file.
func PageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return 0, fmt.Errorf("pdfcpu read: %w", err)
	}
	return ctx.PageCount, nil
}

// ExtractPageImages pulls the scanned image off each page, in page order.
// Pages without a decodable image yield a nil entry; the caller decides how
// to degrade.
func ExtractPageImages(path string) ([]image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}
	pageCount := ctx.PageCount

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	raw, err := api.ExtractImagesRaw(f, nil, conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu extract images: %w", err)
	}

	// One scanned image per page; when a page carries several objects keep
	// the lowest object number.
	byPage := map[int]model.Image{}
	for _, m := range raw {
		for _, img := range m {
			if prev, ok := byPage[img.PageNr]; !ok || img.ObjNr < prev.ObjNr {
				byPage[img.PageNr] = img
			}
		}
	}

	pageNrs := make([]int, 0, len(byPage))
	for nr := range byPage {
		pageNrs = append(pageNrs, nr)
	}
	sort.Ints(pageNrs)

	out := make([]image.Image, pageCount)
	for _, nr := range pageNrs {
		if nr < 1 || nr > pageCount {
			continue
		}
		decoded, _, err := image.Decode(byPage[nr])
		if err != nil {
			continue
		}
		out[nr-1] = decoded
	}
	return out, nil
}

// WritePDFFromPages builds a fresh PDF with one page per image.
func WritePDFFromPages(w io.Writer, pages []*image.Gray) error {
	if len(pages) == 0 {
		return fmt.Errorf("no pages to write")
	}
	readers := make([]io.Reader, len(pages))
	for i, p := range pages {
		var buf bytes.Buffer
		if err := png.Encode(&buf, p); err != nil {
			return fmt.Errorf("encode page %d: %w", i, err)
		}
		readers[i] = &buf
	}
	imp := pdfcpu.DefaultImportConfig()
	if err := api.ImportImages(nil, w, readers, imp, model.NewDefaultConfiguration()); err != nil {
		return fmt.Errorf("pdfcpu import images: %w", err)
	}
	return nil
}
