package render

import "hash/fnv"

var palette = []string{
	"#e6194b", "#3cb44b", "#4363d8", "#f58231", "#911eb4", "#42d4f4",
	"#f032e6", "#9a6324", "#469990", "#800000", "#808000", "#000075",
}

// BundleColor returns a stable stroke colour for a bundle key.
func BundleColor(bundle string) string {
	h := fnv.New32a()
	h.Write([]byte(bundle))
	return palette[h.Sum32()%uint32(len(palette))]
}
