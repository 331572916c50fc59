package updater

import "strings"

// Classifier assigns a priority to a release.
type Classifier func(*Release) Priority

// ClassifyRelease is the default keyword heuristic: releases mentioning
// "security" in their title or notes are security updates, then those
// mentioning "breaking", and everything else is normal.
func ClassifyRelease(r *Release) Priority {
	if r == nil {
		return PriorityNormal
	}
	text := strings.ToLower(r.Name + "\n" + r.Body)
	switch {
	case strings.Contains(text, "security"):
		return PrioritySecurity
	case strings.Contains(text, "breaking"):
		return PriorityBreaking
	default:
		return PriorityNormal
	}
}
