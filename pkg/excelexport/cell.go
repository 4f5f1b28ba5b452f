package excelexport

// CellKind tells the generator how to render a CellData.
type CellKind int

const (
	// CellPlain holds a scalar (string, number, time, bool) or nil.
	CellPlain CellKind = iota
	// CellImage holds raw image bytes that are embedded as a picture.
	CellImage
)

func (k CellKind) String() string {
	switch k {
	case CellPlain:
		return "plain"
	case CellImage:
		return "image"
	default:
		return "unknown"
	}
}

// CellData is the resolved content of one cell.
//
// A nil Value on a plain cell leaves the cell empty.
type CellData struct {
	Value        interface{}
	Kind         CellKind
	NumberFormat string
	WrapText     bool
	Hyperlink    string
}

// Plain returns a plain cell holding v.
func Plain(v interface{}) CellData {
	return CellData{Value: v, Kind: CellPlain}
}

// Image returns an image cell holding the encoded picture bytes.
func Image(b []byte) CellData {
	return CellData{Value: b, Kind: CellImage}
}

// WithNumberFormat returns a copy of c using the given number format code.
func (c CellData) WithNumberFormat(format string) CellData {
	c.NumberFormat = format
	return c
}

// WithWrapText returns a copy of c with text wrapping enabled.
func (c CellData) WithWrapText() CellData {
	c.WrapText = true
	return c
}

// WithHyperlink returns a copy of c linking to link. Links starting with '#'
// point inside the workbook, e.g. "#Sheet2!A1".
func (c CellData) WithHyperlink(link string) CellData {
	c.Hyperlink = link
	return c
}

// imageBytes returns the picture payload of an image cell.
func (c CellData) imageBytes() []byte {
	b, _ := c.Value.([]byte)
	return b
}
