package board

// SSIM stabilizing constants, standard values for k1=0.01 and k2=0.03.
const (
	ssimC1 = 0.01 * 0.01
	ssimC2 = 0.03 * 0.03
)

// SSIM computes the structural similarity of two equally-sized greyscale
// buffers using global means, variances and covariance. Returns 1 for
// identical buffers and 0 when lengths differ.
func SSIM(a, b []uint8) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var sum1, sum2, sum12, sum1sq, sum2sq float64
	for i := range a {
		p1 := float64(a[i])
		p2 := float64(b[i])
		sum1 += p1
		sum2 += p2
		sum12 += p1 * p2
		sum1sq += p1 * p1
		sum2sq += p2 * p2
	}

	n := float64(len(a))
	mean1 := sum1 / n
	mean2 := sum2 / n
	variance1 := sum1sq/n - mean1*mean1
	variance2 := sum2sq/n - mean2*mean2
	covariance := sum12/n - mean1*mean2

	numerator := (2*mean1*mean2 + ssimC1) * (2*covariance + ssimC2)
	denominator := (mean1*mean1 + mean2*mean2 + ssimC1) * (variance1 + variance2 + ssimC2)

	return numerator / denominator
}
