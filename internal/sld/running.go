package sld

import "math"

// runningStat accumulates a mean and population variance with Welford's
// update, so a bootstrap run need not keep every draw.
type runningStat struct {
	n    int
	mean float64
	m2   float64
}

func (r *runningStat) add(x float64) {
	r.n++
	d := x - r.mean
	r.mean += d / float64(r.n)
	r.m2 += d * (x - r.mean)
}

// merge folds o into r using the pairwise update of Chan et al.
func (r *runningStat) merge(o runningStat) {
	if o.n == 0 {
		return
	}
	if r.n == 0 {
		*r = o
		return
	}
	n := r.n + o.n
	d := o.mean - r.mean
	r.mean += d * float64(o.n) / float64(n)
	r.m2 += o.m2 + d*d*float64(r.n)*float64(o.n)/float64(n)
	r.n = n
}

func (r runningStat) stat() Stat {
	if r.n == 0 {
		return Stat{}
	}
	return Stat{Mean: r.mean, Std: math.Sqrt(r.m2 / float64(r.n))}
}

// fractionStats is a runningStat per component.
type fractionStats struct {
	solvent, protein, lipid runningStat
}

func (s *fractionStats) add(f Fractions) {
	s.solvent.add(f.Solvent)
	s.protein.add(f.Protein)
	s.lipid.add(f.Lipid)
}

func (s *fractionStats) merge(o fractionStats) {
	s.solvent.merge(o.solvent)
	s.protein.merge(o.protein)
	s.lipid.merge(o.lipid)
}
