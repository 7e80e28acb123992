package domain

// Normalized returns a rectangle covering the same region with the minimum
// of each coordinate in Lo and the maximum in Hi.
func (r Rectangle) Normalized() Rectangle {
	n := r
	if n.Lo.Latitude > n.Hi.Latitude {
		n.Lo.Latitude, n.Hi.Latitude = n.Hi.Latitude, n.Lo.Latitude
	}
	if n.Lo.Longitude > n.Hi.Longitude {
		n.Lo.Longitude, n.Hi.Longitude = n.Hi.Longitude, n.Lo.Longitude
	}
	return n
}

// Contains reports whether p falls within the rectangle, inclusive on all
// four edges. The rectangle must already be normalized.
func (r Rectangle) Contains(p Point) bool {
	return p.Latitude >= r.Lo.Latitude && p.Latitude <= r.Hi.Latitude &&
		p.Longitude >= r.Lo.Longitude && p.Longitude <= r.Hi.Longitude
}
