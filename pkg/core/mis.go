package core

// PowerHeuristic computes the MIS weight for a sample drawn from f when g is
// the competing strategy, using the power heuristic with exponent 2
func PowerHeuristic(nf int, fPdf float64, ng int, gPdf float64) float64 {
	f := float64(nf) * fPdf
	g := float64(ng) * gPdf
	if f == 0 && g == 0 {
		return 0
	}
	return (f * f) / (f*f + g*g)
}

// BalanceHeuristic computes the MIS weight using the balance heuristic
func BalanceHeuristic(nf int, fPdf float64, ng int, gPdf float64) float64 {
	f := float64(nf) * fPdf
	g := float64(ng) * gPdf
	if f == 0 && g == 0 {
		return 0
	}
	return f / (f + g)
}
