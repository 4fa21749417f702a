// Package vision provides the keypoint-matching capability used by the
// visual-mark scorer to compare authentic issuer marks against images
// extracted from a certificate.
package vision

// FeatureMatcher counts unambiguous keypoint correspondences between a
// reference mark image and a candidate image. Implementations must be safe
// for sequential reuse within one verification request.
type FeatureMatcher interface {
	// GoodMatchCount returns the number of descriptor matches that survive
	// the ambiguity-rejection ratio test.
	GoodMatchCount(referenceImage, candidateImage []byte) (int, error)
}
