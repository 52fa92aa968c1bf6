package outcome

// Images resolves agent portraits by qualifier name.
type Images struct {
	byKey    map[string]string
	fallback string
}

// NewImages builds a lookup from a name->URL map. Names are normalized with
// QualifierKey so configuration may use any casing.
func NewImages(m map[string]string, fallback string) *Images {
	byKey := make(map[string]string, len(m))
	for name, url := range m {
		if url != "" {
			byKey[QualifierKey(name)] = url
		}
	}
	return &Images{byKey: byKey, fallback: fallback}
}

// For returns the image for name, or the fallback.
func (i *Images) For(name string) string {
	if i == nil {
		return ""
	}
	if url, ok := i.byKey[QualifierKey(name)]; ok {
		return url
	}
	return i.fallback
}
