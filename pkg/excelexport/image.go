package excelexport

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"github.com/xuri/excelize/v2"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// nativeExtensions lists the decoded formats stored as-is; any other
// decodable format is re-encoded as PNG.
var nativeExtensions = map[string]string{
	"png":  ".png",
	"jpeg": ".jpg",
	"gif":  ".gif",
}

// scaleToBound fits (w, h) into a bound×bound box keeping the aspect ratio:
// both sides are multiplied by min(bound/w, bound/h) and truncated toward
// zero. The longer side becomes exactly bound.
func scaleToBound(w, h, bound int) (int, int) {
	if w >= h {
		return bound, h * bound / w
	}
	return w * bound / h, bound
}

// embedImage places a picture with its top-left corner at (row, col), scaled
// into the bound box, then sizes the row to the picture height and the column
// to the bound width. Empty payloads are ignored.
func (wb *workbook) embedImage(sheet string, data []byte, row, col int) error {
	if len(data) == 0 {
		return nil
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrImageDecode, err)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return fmt.Errorf("%w: empty %s image", ErrImageDecode, format)
	}

	ext, payload := nativeExtensions[format], data
	if ext == "" {
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return fmt.Errorf("re-encode %s image: %w", format, err)
		}
		ext, payload = ".png", buf.Bytes()
	}

	bound := wb.cfg.imageBound
	w, h := scaleToBound(b.Dx(), b.Dy(), bound)

	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := wb.file.AddPictureFromBytes(sheet, cell, &excelize.Picture{
		Extension: ext,
		File:      payload,
		Format: &excelize.GraphicOptions{
			ScaleX:          float64(w) / float64(b.Dx()),
			ScaleY:          float64(h) / float64(b.Dy()),
			OffsetX:         0,
			OffsetY:         0,
			LockAspectRatio: true,
		},
	}); err != nil {
		return err
	}
	if err := wb.file.SetRowHeight(sheet, row, float64(h)); err != nil {
		return err
	}
	colName, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return err
	}
	return wb.file.SetColWidth(sheet, colName, colName, float64(bound))
}
