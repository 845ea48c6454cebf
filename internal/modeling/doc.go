// Package modeling fits and evaluates the on-time delivery classifier.
//
// Fit runs iteratively reweighted least squares on a design matrix with an
// intercept, solving each Newton step through an SVD pseudo-inverse so a
// collinear design degrades into a warning instead of a failure. Standard
// errors come from the inverse observed information and p-values from the
// two-sided Wald test.
//
// Evaluate thresholds predicted probabilities into labels under a LabelRule
// and summarises them as a confusion matrix with label 1 (on time) as the
// positive class.
package modeling
