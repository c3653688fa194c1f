package regime

import (
	"errors"
	"math"
	"slices"
)

// markovFit holds the fitted parameters of a 2-state Gaussian
// Markov-switching model and the smoothed state probabilities.
type markovFit struct {
	Mean     [2]float64
	Variance [2]float64
	// Trans[i][j] is P(state j at t+1 | state i at t).
	Trans [2][2]float64
	// Smoothed[t][k] is P(state k at t | all observations).
	Smoothed [][2]float64
	LogLik   float64
	Iters    int
}

var errDegenerateFit = errors.New("regime: degenerate markov fit")

const (
	emMaxIters = 100
	emTol      = 1e-6
	// varianceFloor keeps emission densities finite when a state collapses
	// onto near-identical observations.
	varianceFloor = 1e-10
)

// fitMarkov estimates the model by expectation-maximization: a scaled
// Hamilton filter forward pass, a backward pass, then closed-form parameter
// updates. States are initialized by a median split so the two components
// start separated.
func fitMarkov(obs []float64) (*markovFit, error) {
	T := len(obs)
	if T < 2 {
		return nil, errDegenerateFit
	}

	m := initialGuess(obs)

	prevLL := math.Inf(-1)
	alpha := make([][2]float64, T)
	beta := make([][2]float64, T)
	scale := make([]float64, T)

	for iter := 0; iter < emMaxIters; iter++ {
		ll, ok := m.forward(obs, alpha, scale)
		if !ok {
			return nil, errDegenerateFit
		}
		m.backward(obs, beta, scale)

		m.Smoothed = make([][2]float64, T)
		for t := 0; t < T; t++ {
			g0 := alpha[t][0] * beta[t][0]
			g1 := alpha[t][1] * beta[t][1]
			norm := g0 + g1
			if norm <= 0 || math.IsNaN(norm) {
				return nil, errDegenerateFit
			}
			m.Smoothed[t] = [2]float64{g0 / norm, g1 / norm}
		}

		if err := m.maximize(obs, alpha, beta, scale); err != nil {
			return nil, err
		}

		m.LogLik = ll
		m.Iters = iter + 1
		if math.Abs(ll-prevLL) < emTol {
			break
		}
		prevLL = ll
	}

	return m, nil
}

func initialGuess(obs []float64) *markovFit {
	med := median(obs)
	var sum, sum2 [2]float64
	var n [2]float64
	for _, x := range obs {
		k := 0
		if x > med {
			k = 1
		}
		sum[k] += x
		sum2[k] += x * x
		n[k]++
	}
	m := &markovFit{
		Trans: [2][2]float64{{0.9, 0.1}, {0.1, 0.9}},
	}
	for k := 0; k < 2; k++ {
		if n[k] == 0 {
			// all observations on one side of the median (ties); seed the
			// empty state slightly apart so EM can separate them
			m.Mean[k] = med
			m.Variance[k] = varianceFloor
			continue
		}
		m.Mean[k] = sum[k] / n[k]
		m.Variance[k] = sum2[k]/n[k] - m.Mean[k]*m.Mean[k]
		if m.Variance[k] < varianceFloor {
			m.Variance[k] = varianceFloor
		}
	}
	return m
}

func (m *markovFit) density(x float64, k int) float64 {
	v := m.Variance[k]
	d := x - m.Mean[k]
	return math.Exp(-d*d/(2*v)) / math.Sqrt(2*math.Pi*v)
}

// forward runs the scaled forward recursion, filling alpha and the scaling
// factors, and returns the log-likelihood.
func (m *markovFit) forward(obs []float64, alpha [][2]float64, scale []float64) (float64, bool) {
	T := len(obs)
	// uniform initial distribution; the chain forgets it quickly
	a0 := 0.5 * m.density(obs[0], 0)
	a1 := 0.5 * m.density(obs[0], 1)
	s := a0 + a1
	if s <= 0 || math.IsNaN(s) {
		return 0, false
	}
	alpha[0] = [2]float64{a0 / s, a1 / s}
	scale[0] = s
	ll := math.Log(s)

	for t := 1; t < T; t++ {
		for k := 0; k < 2; k++ {
			pred := alpha[t-1][0]*m.Trans[0][k] + alpha[t-1][1]*m.Trans[1][k]
			alpha[t][k] = pred * m.density(obs[t], k)
		}
		s = alpha[t][0] + alpha[t][1]
		if s <= 0 || math.IsNaN(s) {
			return 0, false
		}
		alpha[t][0] /= s
		alpha[t][1] /= s
		scale[t] = s
		ll += math.Log(s)
	}
	return ll, true
}

func (m *markovFit) backward(obs []float64, beta [][2]float64, scale []float64) {
	T := len(obs)
	beta[T-1] = [2]float64{1, 1}
	for t := T - 2; t >= 0; t-- {
		for k := 0; k < 2; k++ {
			sum := 0.0
			for j := 0; j < 2; j++ {
				sum += m.Trans[k][j] * m.density(obs[t+1], j) * beta[t+1][j]
			}
			beta[t][k] = sum / scale[t+1]
		}
	}
}

// maximize re-estimates transition probabilities, means, and variances from
// the smoothed posteriors.
func (m *markovFit) maximize(obs []float64, alpha, beta [][2]float64, scale []float64) error {
	T := len(obs)

	var xiSum [2][2]float64
	for t := 0; t < T-1; t++ {
		var denom float64
		var xi [2][2]float64
		for i := 0; i < 2; i++ {
			for j := 0; j < 2; j++ {
				v := alpha[t][i] * m.Trans[i][j] * m.density(obs[t+1], j) * beta[t+1][j]
				xi[i][j] = v
				denom += v
			}
		}
		if denom <= 0 || math.IsNaN(denom) {
			return errDegenerateFit
		}
		for i := 0; i < 2; i++ {
			for j := 0; j < 2; j++ {
				xiSum[i][j] += xi[i][j] / denom
			}
		}
	}

	for i := 0; i < 2; i++ {
		rowSum := xiSum[i][0] + xiSum[i][1]
		if rowSum <= 0 {
			return errDegenerateFit
		}
		m.Trans[i][0] = xiSum[i][0] / rowSum
		m.Trans[i][1] = xiSum[i][1] / rowSum
	}

	for k := 0; k < 2; k++ {
		var wsum, xsum float64
		for t := 0; t < T; t++ {
			wsum += m.Smoothed[t][k]
			xsum += m.Smoothed[t][k] * obs[t]
		}
		if wsum <= 0 {
			return errDegenerateFit
		}
		mean := xsum / wsum
		var vsum float64
		for t := 0; t < T; t++ {
			d := obs[t] - mean
			vsum += m.Smoothed[t][k] * d * d
		}
		m.Mean[k] = mean
		m.Variance[k] = vsum / wsum
		if m.Variance[k] < varianceFloor {
			m.Variance[k] = varianceFloor
		}
	}
	return nil
}

// reorder enforces the labeling invariant: state 0 is the lower-mean state.
// Fitting gives no guarantee about internal state indices, so the swap is
// applied after convergence.
func (m *markovFit) reorder() {
	if m.Mean[0] <= m.Mean[1] {
		return
	}
	m.Mean[0], m.Mean[1] = m.Mean[1], m.Mean[0]
	m.Variance[0], m.Variance[1] = m.Variance[1], m.Variance[0]
	m.Trans[0][0], m.Trans[1][1] = m.Trans[1][1], m.Trans[0][0]
	m.Trans[0][1], m.Trans[1][0] = m.Trans[1][0], m.Trans[0][1]
	for t := range m.Smoothed {
		m.Smoothed[t][0], m.Smoothed[t][1] = m.Smoothed[t][1], m.Smoothed[t][0]
	}
}

func median(xs []float64) float64 {
	tmp := make([]float64, len(xs))
	copy(tmp, xs)
	slices.Sort(tmp)
	mid := len(tmp) / 2
	if len(tmp)%2 == 1 {
		return tmp[mid]
	}
	return (tmp[mid-1] + tmp[mid]) / 2
}
