// Package stats provides the numeric routines the scoring engine is built on:
// mean/stddev, IQR bounds, Z-scores, Pearson correlation and ordinary least
// squares. All functions are pure and raise typed errors instead of returning
// sentinel values; a fabricated 0 or NaN here has previously turned into a
// false "no anomaly" conclusion downstream.
package stats

import (
	"math"
	"sort"
)

// MeanStdDev returns the arithmetic mean and sample standard deviation of xs.
// The stddev is undefined below two samples.
func MeanStdDev(xs []float64) (mean, stddev float64, err error) {
	if len(xs) < 2 {
		return 0, 0, &InsufficientDataError{Op: "mean_stddev", Need: 2, Got: len(xs)}
	}
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))

	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	stddev = math.Sqrt(ss / float64(len(xs)-1))
	return mean, stddev, nil
}

// Mean returns the arithmetic mean of xs, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// IQRBounds returns the (lower, upper) fence of the sample using Q1/Q3 of the
// sorted values and the multiplier k (1.5 for the classic Tukey fence).
// Quartiles are meaningless below four samples.
func IQRBounds(xs []float64, k float64) (lower, upper float64, err error) {
	if len(xs) < 4 {
		return 0, 0, &InsufficientDataError{Op: "iqr_bounds", Need: 4, Got: len(xs)}
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	q1 := percentile(sorted, 25)
	q3 := percentile(sorted, 75)
	iqr := q3 - q1
	return q1 - k*iqr, q3 + k*iqr, nil
}

// percentile computes the p-th percentile of a sorted sample using linear
// interpolation between closest ranks (numpy's default method).
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ZScores returns the Z-score of every element. A constant series has no
// defined Z-scores; callers must treat that as "no outliers", not propagate
// NaN.
func ZScores(xs []float64) ([]float64, error) {
	mean, stddev, err := MeanStdDev(xs)
	if err != nil {
		return nil, err
	}
	if stddev == 0 {
		return nil, &DegenerateInputError{Op: "z_scores", Reason: "zero standard deviation"}
	}
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = (x - mean) / stddev
	}
	return out, nil
}

// PearsonCorrelation returns the correlation coefficient r between xs and ys
// and the two-sided p-value of the t-test against r = 0. Series must have
// equal length of at least three points; a constant series on either side is
// degenerate.
func PearsonCorrelation(xs, ys []float64) (r, pValue float64, err error) {
	if len(xs) != len(ys) {
		return 0, 0, &DegenerateInputError{Op: "pearson", Reason: "series length mismatch"}
	}
	n := len(xs)
	if n < 3 {
		return 0, 0, &InsufficientDataError{Op: "pearson", Need: 3, Got: n}
	}

	mx := Mean(xs)
	my := Mean(ys)
	var sxy, sxx, syy float64
	for i := 0; i < n; i++ {
		dx := xs[i] - mx
		dy := ys[i] - my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0, 0, &DegenerateInputError{Op: "pearson", Reason: "constant series"}
	}

	r = sxy / math.Sqrt(sxx*syy)
	// Guard against floating point drift before the t transform.
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}

	if math.Abs(r) == 1 {
		return r, 0, nil
	}
	t := r * math.Sqrt(float64(n-2)/(1-r*r))
	pValue = twoSidedTPValue(t, float64(n-2))
	return r, pValue, nil
}

// LinearTrend fits y = slope*i + intercept over index order by ordinary least
// squares and reports the coefficient of determination.
func LinearTrend(xs []float64) (slope, intercept, rSquared float64, err error) {
	n := len(xs)
	if n < 2 {
		return 0, 0, 0, &InsufficientDataError{Op: "linear_trend", Need: 2, Got: n}
	}

	// Index mean for 0..n-1 is (n-1)/2.
	mi := float64(n-1) / 2
	my := Mean(xs)
	var sxy, sxx float64
	for i, y := range xs {
		di := float64(i) - mi
		sxy += di * (y - my)
		sxx += di * di
	}
	slope = sxy / sxx
	intercept = my - slope*mi

	var ssRes, ssTot float64
	for i, y := range xs {
		pred := slope*float64(i) + intercept
		ssRes += (y - pred) * (y - pred)
		ssTot += (y - my) * (y - my)
	}
	if ssTot == 0 {
		// Flat series: the fit is exact but explains no variance.
		return slope, intercept, 0, nil
	}
	return slope, intercept, 1 - ssRes/ssTot, nil
}

// twoSidedTPValue computes P(|T| >= |t|) for a Student t distribution with df
// degrees of freedom, via the regularized incomplete beta function.
func twoSidedTPValue(t, df float64) float64 {
	x := df / (df + t*t)
	return regularizedIncompleteBeta(df/2, 0.5, x)
}

// regularizedIncompleteBeta evaluates I_x(a, b) with the continued fraction
// expansion from Numerical Recipes (Lentz's method).
func regularizedIncompleteBeta(a, b, x float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}
	lnBeta := lgamma(a+b) - lgamma(a) - lgamma(b)
	front := math.Exp(lnBeta + a*math.Log(x) + b*math.Log(1-x))

	if x < (a+1)/(a+b+2) {
		return front * betaCF(a, b, x) / a
	}
	return 1 - front*betaCF(b, a, 1-x)/b
}

func betaCF(a, b, x float64) float64 {
	const (
		maxIter = 200
		eps     = 3e-14
		fpmin   = 1e-300
	)
	qab := a + b
	qap := a + 1
	qam := a - 1
	c := 1.0
	d := 1 - qab*x/qap
	if math.Abs(d) < fpmin {
		d = fpmin
	}
	d = 1 / d
	h := d
	for m := 1; m <= maxIter; m++ {
		fm := float64(m)
		m2 := 2 * fm
		aa := fm * (b - fm) * x / ((qam + m2) * (a + m2))
		d = 1 + aa*d
		if math.Abs(d) < fpmin {
			d = fpmin
		}
		c = 1 + aa/c
		if math.Abs(c) < fpmin {
			c = fpmin
		}
		d = 1 / d
		h *= d * c
		aa = -(a + fm) * (qab + fm) * x / ((a + m2) * (qap + m2))
		d = 1 + aa*d
		if math.Abs(d) < fpmin {
			d = fpmin
		}
		c = 1 + aa/c
		if math.Abs(c) < fpmin {
			c = fpmin
		}
		d = 1 / d
		del := d * c
		h *= del
		if math.Abs(del-1) < eps {
			break
		}
	}
	return h
}

func lgamma(x float64) float64 {
	v, _ := math.Lgamma(x)
	return v
}
