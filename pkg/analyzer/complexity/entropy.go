package complexity

import (
	"math"

	"github.com/burden-dev/burden/pkg/ir"
	"github.com/burden-dev/burden/pkg/models"
)

// scoreEntropy turns a token profile into an entropy score. Returns nil when
// the body is too small to say anything useful.
func scoreEntropy(profile ir.TokenProfile) *models.EntropyScore {
	if profile.TotalTokens < 10 {
		return nil
	}
	return &models.EntropyScore{
		TokenEntropy:      tokenEntropy(profile),
		PatternRepetition: patternRepetition(profile.BranchSignatures),
		BranchSimilarity:  branchSimilarity(profile.BranchSignatures),
		UniqueVariables:   profile.UniqueVariables,
	}
}

// tokenEntropy is the Shannon entropy of the token class distribution,
// normalized to [0, 1] by the maximum possible entropy for the observed
// class count. Low values mean the body keeps repeating the same kinds of
// tokens.
func tokenEntropy(profile ir.TokenProfile) float64 {
	if len(profile.ClassCounts) <= 1 {
		return 0
	}
	total := float64(profile.TotalTokens)
	var h float64
	for _, count := range profile.ClassCounts {
		if count == 0 {
			continue
		}
		p := float64(count) / total
		h -= p * math.Log2(p)
	}
	maxH := math.Log2(float64(len(profile.ClassCounts)))
	if maxH == 0 {
		return 0
	}
	return h / maxH
}

// patternRepetition is the fraction of branch bodies that are structural
// repeats of an earlier branch.
func patternRepetition(signatures []uint64) float64 {
	if len(signatures) < 2 {
		return 0
	}
	seen := make(map[uint64]struct{}, len(signatures))
	for _, sig := range signatures {
		seen[sig] = struct{}{}
	}
	return 1.0 - float64(len(seen))/float64(len(signatures))
}

// branchSimilarity is the share of branches belonging to the most common
// structural signature.
func branchSimilarity(signatures []uint64) float64 {
	if len(signatures) < 2 {
		return 0
	}
	counts := make(map[uint64]int, len(signatures))
	max := 0
	for _, sig := range signatures {
		counts[sig]++
		if counts[sig] > max {
			max = counts[sig]
		}
	}
	return float64(max) / float64(len(signatures))
}
