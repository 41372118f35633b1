package product

import "encoding/json"

// Type tags a unified product record. Legacy flat records carry no tag.
type Type string

const (
	TypeVehicle Type = "vehicle"
	TypeLaptop  Type = "laptop"
	TypeBook    Type = "book"
	TypeGeneric Type = "generic"
)

type Image struct {
	Primary string   `json:"primary,omitempty"`
	Count   int      `json:"count,omitempty"`
	Gallery []string `json:"gallery,omitempty"`
}

type MPG struct {
	City    float64 `json:"city"`
	Highway float64 `json:"highway"`
}

type VehicleInfo struct {
	Year    int      `json:"year,omitempty"`
	Make    string   `json:"make,omitempty"`
	Model   string   `json:"model,omitempty"`
	Trim    string   `json:"trim,omitempty"`
	Mileage *float64 `json:"mileage,omitempty"`
	MPG     *MPG     `json:"mpg,omitempty"`
}

type LaptopSpecs struct {
	Processor string `json:"processor,omitempty"`
	RAM       string `json:"ram,omitempty"`
	Storage   string `json:"storage,omitempty"`
	Display   string `json:"display,omitempty"`
}

type LaptopInfo struct {
	Specs LaptopSpecs `json:"specs"`
	Tags  []string    `json:"tags,omitempty"`
}

type BookInfo struct {
	Author string `json:"author,omitempty"`
	Genre  string `json:"genre,omitempty"`
	Format string `json:"format,omitempty"`
	Pages  int    `json:"pages,omitempty"`
}

// Product is the internal display shape for one recommended item. It is a
// union of two upstream schemas: the legacy flat vehicle record (identified
// fields plus an open extension bag of raw upstream keys) and the unified
// record (ProductType plus exactly one populated type-specific sub-object).
// Instances are built by the normalizer and treated as read-only after that.
type Product struct {
	ID          string
	ProductType Type
	Title       string
	Name        string
	Price       float64
	PriceText   string
	ImageURL    string
	Brand       string
	Source      string
	ListingURL  string
	Description string
	Rating      float64
	RatingCount int
	Inventory   *float64
	Available   *bool
	Image       *Image
	Vehicle     *VehicleInfo
	Laptop      *LaptopInfo
	Book        *BookInfo

	// Extra carries every upstream field not covered by a named field, so
	// domain-specific keys (mileage, body_style, specs...) survive the trip
	// through persistence and back.
	Extra map[string]any
}

// MarshalJSON flattens the extension bag into the object and writes named
// fields after it, so computed values always win over raw upstream ones.
func (p Product) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Extra)+12)
	for k, v := range p.Extra {
		out[k] = v
	}
	out["id"] = p.ID
	out["price"] = p.Price
	setIf(out, "productType", string(p.ProductType))
	setIf(out, "title", p.Title)
	setIf(out, "name", p.Name)
	setIf(out, "price_text", p.PriceText)
	setIf(out, "image_url", p.ImageURL)
	setIf(out, "brand", p.Brand)
	setIf(out, "source", p.Source)
	setIf(out, "listing_url", p.ListingURL)
	setIf(out, "description", p.Description)
	if p.Rating != 0 {
		out["rating"] = p.Rating
	}
	if p.RatingCount != 0 {
		out["rating_count"] = p.RatingCount
	}
	if p.Inventory != nil {
		out["inventory"] = *p.Inventory
	}
	if p.Available != nil {
		out["available"] = *p.Available
	}
	if p.Image != nil {
		out["image"] = p.Image
	}
	if p.Vehicle != nil {
		out["vehicle"] = p.Vehicle
	}
	if p.Laptop != nil {
		out["laptop"] = p.Laptop
	}
	if p.Book != nil {
		out["book"] = p.Book
	}
	return json.Marshal(out)
}

func setIf(m map[string]any, key, val string) {
	if val != "" {
		m[key] = val
	}
}

// UnmarshalJSON splits named fields out of the object and keeps everything
// else in the extension bag. A named field that fails to decode stays in the
// bag rather than failing the whole record.
func (p *Product) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Product{}
	take := func(key string, dst any) bool {
		msg, ok := raw[key]
		if !ok {
			return false
		}
		if err := json.Unmarshal(msg, dst); err != nil {
			return false
		}
		delete(raw, key)
		return true
	}
	take("id", &p.ID)
	take("productType", &p.ProductType)
	take("title", &p.Title)
	take("name", &p.Name)
	take("price", &p.Price)
	take("price_text", &p.PriceText)
	take("image_url", &p.ImageURL)
	take("brand", &p.Brand)
	take("source", &p.Source)
	take("listing_url", &p.ListingURL)
	take("description", &p.Description)
	take("rating", &p.Rating)
	take("rating_count", &p.RatingCount)
	take("inventory", &p.Inventory)
	take("available", &p.Available)
	take("image", &p.Image)
	take("vehicle", &p.Vehicle)
	take("laptop", &p.Laptop)
	take("book", &p.Book)
	if len(raw) > 0 {
		p.Extra = make(map[string]any, len(raw))
		for k, msg := range raw {
			var v any
			if err := json.Unmarshal(msg, &v); err == nil {
				p.Extra[k] = v
			}
		}
	}
	return nil
}

// Map renders the product as its flattened JSON object form.
func (p Product) Map() map[string]any {
	b, err := json.Marshal(p)
	if err != nil {
		return map[string]any{"id": p.ID}
	}
	m := map[string]any{}
	if err := json.Unmarshal(b, &m); err != nil {
		return map[string]any{"id": p.ID}
	}
	return m
}

// Snapshot is the denormalized persistence form stored next to a cart or
// favorites row, a superset of both schemas so either one round-trips.
func Snapshot(p Product) map[string]any {
	m := p.Map()
	if _, ok := m["title"]; !ok {
		if name, ok := m["name"]; ok {
			m["title"] = name
		}
	}
	return m
}

// SoldOut reports whether the item is out of stock. Absent inventory means
// available.
func SoldOut(p Product) bool {
	return p.Inventory != nil && *p.Inventory <= 0
}
