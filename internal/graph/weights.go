package graph

// TrustWeights maps trust-bearing relation labels to their propagation
// weight. Labels outside this table are ignored by the reputation engine
// but still count toward total connectedness.
var TrustWeights = map[string]float64{
	"trusts":            1.0,
	"endorsed_by":       0.9,
	"verified_by":       0.9,
	"collaborates_with": 0.7,
	"depends_on":        0.6,
	"implements":        0.6,
	"built":             0.8,
	"uses":              0.5,
}

// IsTrustRelation reports whether the label is in the trust-bearing set.
func IsTrustRelation(label string) bool {
	_, ok := TrustWeights[label]
	return ok
}
