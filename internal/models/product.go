package models

// Product is one storefront listing derived from a product entry in the page.
// Records are built once during extraction and never mutated afterwards.
type Product struct {
	Name          string   `json:"name"`
	Code          string   `json:"code"`
	Category      string   `json:"category"`
	Price         string   `json:"price"`
	Currency      string   `json:"currency"`
	Unit          string   `json:"unit"`
	GST           string   `json:"gst"`
	Description   string   `json:"description"`
	ImageFilename string   `json:"image_filename"`
	Tags          []string `json:"tags"`
}

// Columns is the tabular header, in serialization order.
var Columns = []string{
	"name",
	"code",
	"category",
	"price",
	"currency",
	"unit",
	"gst",
	"description",
	"image_filename",
	"tags",
}

func NewProduct(name, currency, unit string) Product {
	return Product{
		Name:     name,
		Currency: currency,
		Unit:     unit,
		Tags:     make([]string, 0),
	}
}

// Key identifies the product in the catalog: the code when present,
// otherwise the name.
func (p *Product) Key() string {
	if p.Code != "" {
		return p.Code
	}
	return p.Name
}

func (p *Product) HasImage() bool {
	return p.ImageFilename != ""
}
