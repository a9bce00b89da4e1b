// Package forest implements a random-forest regressor: an ensemble of CART
// regression trees grown on bootstrap samples with per-split feature
// subsampling. The estimator surface is deliberately small (Fit, Predict)
// and deterministic for a fixed seed, so sweep runs are reproducible.
package forest
