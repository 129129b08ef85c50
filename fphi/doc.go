// Package fphi estimates narrow-sense heritability from an eigendecomposed
// relatedness matrix.
//
// The trait vector and an all-ones design vector are rotated into the
// eigenbasis (no centering). In that basis the covariance is diagonal:
//
//	Σ_i = (1 − h2r) + h2r·λ_i
//
// and the profile log-likelihood depends on h2r alone. The search runs Newton
// steps on t with h2r = t²/(1+t²), starting at t = 1, h2r = 0.5, and stops when
// h2r moves less than 10^-precision, after the iteration cap, or as soon as a
// step is not finite. Estimates at or beyond 0.9 (0.1) are compared against the
// likelihood at exactly 1 (0), and the boundary wins only when it is strictly
// better.
//
// Standard errors come from the inverse of the observed 3×3 information over
// (mean, e2, sd); if that matrix cannot be inverted every SE is reported as 0.
// Significance is a likelihood-ratio test against the sporadic model (h2r = 0):
// p = Q_χ²₁(2·(ll − ll₀))/2, or 0.5 when the fit does not beat the null.
package fphi
