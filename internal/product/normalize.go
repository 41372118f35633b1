package product

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// FromAPIRecord converts one raw recommendation-backend record into a
// Product. Records carrying a productType are treated as pre-normalized
// unified records and overlaid on whatever legacy base can be built from
// their vehicle/retailListing sub-objects; everything else goes through the
// legacy vehicle mapping.
func FromAPIRecord(rec map[string]any) Product {
	if rec == nil {
		rec = map[string]any{}
	}
	if _, ok := rec["productType"]; ok {
		return fromUnified(rec)
	}
	return fromLegacy(rec)
}

// FromAPIRows converts a 2-D array of backend records, preserving the row
// grouping (one row per recommendation bucket).
func FromAPIRows(rows [][]map[string]any) [][]Product {
	out := make([][]Product, len(rows))
	for i, row := range rows {
		out[i] = make([]Product, len(row))
		for j, rec := range row {
			out[i][j] = FromAPIRecord(rec)
		}
	}
	return out
}

func fromLegacy(rec map[string]any) Product {
	veh := mapAt(rec, "vehicle")
	retail := mapAt(rec, "retailListing")

	mk := stringAt(veh, "make")
	mdl := stringAt(veh, "model")
	year := intAt(veh, "year")

	price := numberAt(retail, "price")
	if price == 0 {
		price = numberAt(veh, "price")
	}
	mileage, hasMileage := lookupNumber(retail, "miles")
	if !hasMileage {
		mileage, hasMileage = lookupNumber(veh, "mileage")
	}
	if !hasMileage {
		mileage, hasMileage = lookupNumber(retail, "mileage")
	}

	title := ""
	switch {
	case year != 0 && mk != "" && mdl != "":
		title = fmt.Sprintf("%d %s %s", year, mk, mdl)
		if trim := stringAt(veh, "trim"); trim != "" {
			title += " " + trim
		}
	case stringAt(veh, "title") != "":
		title = stringAt(veh, "title")
	default:
		title = "Product"
	}

	imageURL := firstString(
		stringAt(retail, "primaryImage"),
		stringAt(retail, "photo_url"),
		stringAt(veh, "image_url"),
		stringAt(veh, "photo_url"),
	)

	location := ""
	if city, state := stringAt(retail, "city"), stringAt(retail, "state"); city != "" && state != "" {
		location = city + ", " + state
	}
	if location == "" {
		location = firstString(stringAt(retail, "location"), stringAt(veh, "location"))
	}
	source := firstString(
		stringAt(retail, "dealer"),
		stringAt(retail, "dealer_name"),
		stringAt(veh, "dealer_name"),
		location,
	)
	if source == "" {
		source = "Unknown Dealer"
	}

	listingURL := firstString(stringAt(retail, "carfaxUrl"), stringAt(rec, "@id"))

	id := firstString(
		stringAt(retail, "listing_id"),
		stringAt(veh, "vin"),
		stringAt(veh, "id"),
	)
	if id == "" {
		id = compositeID(mk, mdl, year)
	}

	// Spread every raw vehicle/retailListing field into the bag first, then
	// apply computed fields on top so raw input cannot shadow them.
	bag := map[string]any{}
	for k, v := range veh {
		bag[k] = v
	}
	for k, v := range retail {
		bag[k] = v
	}
	setIf(bag, "make", mk)
	setIf(bag, "model", mdl)
	if year != 0 {
		bag["year"] = year
	}
	if hasMileage {
		bag["mileage"] = mileage
	}
	setIf(bag, "body_style", firstString(stringAt(veh, "body_type"), stringAt(veh, "body_style")))
	setIf(bag, "fuel_type", stringAt(veh, "fuel_type"))
	setIf(bag, "transmission", stringAt(veh, "transmission"))
	setIf(bag, "drivetrain", stringAt(veh, "drivetrain"))
	setIf(bag, "engine", stringAt(veh, "engine"))
	setIf(bag, "exterior_color", firstString(stringAt(veh, "color"), stringAt(veh, "exterior_color")))
	setIf(bag, "vin", stringAt(veh, "vin"))
	setIf(bag, "location", location)

	return Product{
		ID:         id,
		Title:      title,
		Price:      price,
		PriceText:  priceText(price),
		ImageURL:   imageURL,
		Brand:      mk,
		Source:     source,
		ListingURL: listingURL,
		Extra:      bag,
	}
}

func fromUnified(rec map[string]any) Product {
	base := map[string]any{}
	if mapAt(rec, "vehicle") != nil || mapAt(rec, "retailListing") != nil {
		base = fromLegacy(rec).Map()
	}
	for k, v := range rec {
		base[k] = v
	}

	var p Product
	if b, err := json.Marshal(base); err == nil {
		_ = json.Unmarshal(b, &p)
	}

	if p.ID == "" {
		veh := mapAt(rec, "vehicle")
		p.ID = compositeID(stringAt(veh, "make"), stringAt(veh, "model"), intAt(veh, "year"))
	}
	if p.Title == "" && p.Name == "" {
		p.Name = "Product"
	}
	if p.PriceText == "" {
		p.PriceText = priceText(p.Price)
	}
	enforceVariant(&p)
	return p
}

// enforceVariant keeps exactly the sub-object matching the product type.
func enforceVariant(p *Product) {
	if p.ProductType != TypeVehicle {
		p.Vehicle = nil
	}
	if p.ProductType != TypeLaptop {
		p.Laptop = nil
	}
	if p.ProductType != TypeBook {
		p.Book = nil
	}
}

// compositeID is the last-resort identity: make/model/year plus a random
// suffix so two otherwise identical records stay distinct.
func compositeID(mk, mdl string, year int) string {
	return fmt.Sprintf("%s-%s-%d-%s", mk, mdl, year, uuid.NewString()[:8])
}

// priceText renders "$" plus a thousands-grouped amount, or "" for a zero
// or missing price.
func priceText(price float64) string {
	if price == 0 {
		return ""
	}
	whole := int64(price)
	s := groupThousands(whole)
	if frac := price - float64(whole); frac != 0 {
		dec := strconv.FormatFloat(price, 'f', -1, 64)
		if i := strings.IndexByte(dec, '.'); i >= 0 {
			s += dec[i:]
		}
	}
	return "$" + s
}

func groupThousands(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	s := strconv.FormatInt(n, 10)
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func mapAt(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	sub, _ := m[key].(map[string]any)
	return sub
}

func stringAt(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

func numberAt(m map[string]any, key string) float64 {
	n, _ := lookupNumber(m, key)
	return n
}

func lookupNumber(m map[string]any, key string) (float64, bool) {
	if m == nil {
		return 0, false
	}
	switch v := m[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

func intAt(m map[string]any, key string) int {
	n, _ := lookupNumber(m, key)
	return int(n)
}

func firstString(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
