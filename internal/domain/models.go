package domain

// ViewCategory is one of the six fixed image angles a ship image is
// classified into based on its filename.
type ViewCategory string

const (
	ViewIsometric ViewCategory = "Isometric"
	ViewAbove     ViewCategory = "Above"
	ViewPort      ViewCategory = "Port"
	ViewFront     ViewCategory = "Front"
	ViewRear      ViewCategory = "Rear"
	ViewBelow     ViewCategory = "Below"
)

// ViewCategories lists all categories in export column order.
var ViewCategories = []ViewCategory{
	ViewIsometric,
	ViewAbove,
	ViewPort,
	ViewFront,
	ViewRear,
	ViewBelow,
}

// SpeedUnknown marks optional speed fields absent from the source table.
// Absence is a known data-quality gap, not an error.
const SpeedUnknown float64 = -1

// ShipRecord holds one row of the pledge-vehicle listing table.
type ShipRecord struct {
	Name          string
	Wiki          string // absolute URL of the ship's detail page
	Manufacturer  string
	Size          string
	Length        float64 // meters
	Width         float64 // meters
	Height        float64 // meters
	MaxSpeed      float64 // m/s, SpeedUnknown when absent
	ScmSpeed      float64 // m/s, SpeedUnknown when absent
	ZeroToScmTime float64 // seconds, SpeedUnknown when absent
}

// ImageRecord holds the downloaded image filename per view for one ship.
// An empty field means no image of that view was found.
type ImageRecord struct {
	Name      string
	Isometric string
	Above     string
	Port      string
	Front     string
	Rear      string
	Below     string
}

// SetView records the filename under a view. Last write wins when a ship
// carries duplicate views.
func (r *ImageRecord) SetView(v ViewCategory, filename string) {
	switch v {
	case ViewIsometric:
		r.Isometric = filename
	case ViewAbove:
		r.Above = filename
	case ViewPort:
		r.Port = filename
	case ViewFront:
		r.Front = filename
	case ViewRear:
		r.Rear = filename
	case ViewBelow:
		r.Below = filename
	}
}

// View returns the filename recorded under a view, empty when absent.
func (r *ImageRecord) View(v ViewCategory) string {
	switch v {
	case ViewIsometric:
		return r.Isometric
	case ViewAbove:
		return r.Above
	case ViewPort:
		return r.Port
	case ViewFront:
		return r.Front
	case ViewRear:
		return r.Rear
	case ViewBelow:
		return r.Below
	}
	return ""
}

// ShipDataset is an order-preserving collection of ship records indexed
// by name.
type ShipDataset struct {
	names  []string
	byName map[string]ShipRecord
}

func NewShipDataset() *ShipDataset {
	return &ShipDataset{byName: make(map[string]ShipRecord)}
}

func (d *ShipDataset) Add(rec ShipRecord) {
	if _, ok := d.byName[rec.Name]; !ok {
		d.names = append(d.names, rec.Name)
	}
	d.byName[rec.Name] = rec
}

func (d *ShipDataset) Get(name string) (ShipRecord, bool) {
	rec, ok := d.byName[name]
	return rec, ok
}

func (d *ShipDataset) Len() int { return len(d.names) }

// Records returns all records in extraction order.
func (d *ShipDataset) Records() []ShipRecord {
	out := make([]ShipRecord, 0, len(d.names))
	for _, name := range d.names {
		out = append(out, d.byName[name])
	}
	return out
}

// ImageDataset is the image-filename table, ordered like the ship dataset
// it was built from. The two datasets share the name key space but are
// built independently.
type ImageDataset struct {
	names  []string
	byName map[string]ImageRecord
}

func NewImageDataset() *ImageDataset {
	return &ImageDataset{byName: make(map[string]ImageRecord)}
}

func (d *ImageDataset) Add(rec ImageRecord) {
	if _, ok := d.byName[rec.Name]; !ok {
		d.names = append(d.names, rec.Name)
	}
	d.byName[rec.Name] = rec
}

func (d *ImageDataset) Get(name string) (ImageRecord, bool) {
	rec, ok := d.byName[name]
	return rec, ok
}

func (d *ImageDataset) Len() int { return len(d.names) }

func (d *ImageDataset) Records() []ImageRecord {
	out := make([]ImageRecord, 0, len(d.names))
	for _, name := range d.names {
		out = append(out, d.byName[name])
	}
	return out
}
