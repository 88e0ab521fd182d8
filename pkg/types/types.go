package types

// Mask is a binary foreground/background classification of an image at the
// segmentation backend's native resolution. Data[y*Width+x] > 0 means
// foreground. A mask belongs to the run that produced it and is discarded
// when the run ends.
type Mask struct {
	Width  int
	Height int
	Data   []byte
}

// NewMask creates an all-background mask of the given dimensions.
func NewMask(width, height int) Mask {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return Mask{
		Width:  width,
		Height: height,
		Data:   make([]byte, width*height),
	}
}

// At reports whether the pixel at (x, y) is foreground.
func (m Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Data[y*m.Width+x] > 0
}

// Set marks the pixel at (x, y) as foreground.
func (m Mask) Set(x, y int) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	m.Data[y*m.Width+x] = 1
}

// Region identifies one garment area of interest. The set of regions and its
// order are caller-supplied configuration, never derived from image content.
type Region struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// DefaultRegions returns the standard ordered garment region set.
func DefaultRegions() []Region {
	return []Region{
		{ID: "top", Label: "Top"},
		{ID: "bottom", Label: "Bottom"},
		{ID: "shoes", Label: "Shoes"},
	}
}

// Box is a bounding box normalized to [0,1] against mask dimensions.
type Box struct {
	RegionID string  `json:"regionId,omitempty"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	W        float64 `json:"w"`
	H        float64 `json:"h"`
}

// DrawRect is the letterbox placement of a source image inside a destination
// surface, in destination pixel units.
type DrawRect struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
	DW float64 `json:"dw"`
	DH float64 `json:"dh"`
}

// PersonDetection is the subject box reported by a vision model backend.
type PersonDetection struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Box        Box     `json:"box"`
}

// ProductHint is read-only product information attached to a region by the
// caller. The core never produces hints.
type ProductHint struct {
	Title      string `json:"title"`
	Brand      string `json:"brand,omitempty"`
	PriceLabel string `json:"priceLabel,omitempty"`
	Href       string `json:"href,omitempty"`
}
