package vision

import (
	"fmt"

	"gocv.io/x/gocv"
)

// LoweRatio is the standard nearest-neighbor ambiguity-rejection threshold:
// a match is kept only if its best distance is below this fraction of the
// second-best distance.
const LoweRatio = 0.75

// SIFTMatcher implements FeatureMatcher with scale-invariant feature
// transform keypoints and brute-force descriptor matching.
type SIFTMatcher struct{}

// NewSIFTMatcher creates a SIFT-based feature matcher
func NewSIFTMatcher() *SIFTMatcher {
	return &SIFTMatcher{}
}

// GoodMatchCount detects keypoints on both images, matches descriptors with
// k=2 nearest neighbors, and counts the matches passing the ratio test.
func (m *SIFTMatcher) GoodMatchCount(referenceImage, candidateImage []byte) (int, error) {
	ref, err := gocv.IMDecode(referenceImage, gocv.IMReadGrayScale)
	if err != nil {
		return 0, fmt.Errorf("decode reference image: %w", err)
	}
	defer func() { _ = ref.Close() }()
	if ref.Empty() {
		return 0, fmt.Errorf("reference image is empty")
	}

	cand, err := gocv.IMDecode(candidateImage, gocv.IMReadGrayScale)
	if err != nil {
		return 0, fmt.Errorf("decode candidate image: %w", err)
	}
	defer func() { _ = cand.Close() }()
	if cand.Empty() {
		return 0, fmt.Errorf("candidate image is empty")
	}

	sift := gocv.NewSIFT()
	defer func() { _ = sift.Close() }()

	maskRef := gocv.NewMat()
	defer func() { _ = maskRef.Close() }()
	_, refDesc := sift.DetectAndCompute(ref, maskRef)
	defer func() { _ = refDesc.Close() }()
	if refDesc.Empty() {
		return 0, fmt.Errorf("no descriptors in reference image")
	}

	maskCand := gocv.NewMat()
	defer func() { _ = maskCand.Close() }()
	_, candDesc := sift.DetectAndCompute(cand, maskCand)
	defer func() { _ = candDesc.Close() }()
	if candDesc.Empty() {
		// A featureless candidate simply matches nothing
		return 0, nil
	}

	matcher := gocv.NewBFMatcher()
	defer func() { _ = matcher.Close() }()

	matches := matcher.KnnMatch(refDesc, candDesc, 2)

	good := 0
	for _, pair := range matches {
		if len(pair) < 2 {
			continue
		}
		if pair[0].Distance < LoweRatio*pair[1].Distance {
			good++
		}
	}

	return good, nil
}
