// Package analytic provides closed-form queueing-theory results used as
// validation references for simulated statistics.
//
// All rates are per unit of simulated time. Every model returns ok=false when
// its parameters fall outside the model's valid or stable domain.
package analytic

import (
	"fmt"
	"math"
)

// Result holds the steady-state measures of a queueing model.
type Result struct {
	Rho             float64 // Offered load per server, lambda / (c * mu)
	Utilization     float64 // Carried load per server
	Throughput      float64 // Rate of admitted (and departing) jobs
	WaitProbability float64 // Probability an admitted job has to wait
	LossProbability float64 // Probability an arriving job is rejected
	Wq              float64 // Mean wait before service
	W               float64 // Mean time in system
	Lq              float64 // Mean number waiting
	L               float64 // Mean number in system
}

func (r Result) String() string {
	return fmt.Sprintf("rho=%.4f Wq=%.4f W=%.4f Lq=%.4f L=%.4f loss=%.4f", r.Rho, r.Wq, r.W, r.Lq, r.L, r.LossProbability)
}

func positive(xs ...float64) bool {
	for _, x := range xs {
		if !(x > 0) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// MM1 solves the M/M/1 queue with arrival rate lambda and service rate mu.
func MM1(lambda, mu float64) (Result, bool) {
	if !positive(lambda, mu) {
		return Result{}, false
	}
	rho := lambda / mu
	if rho >= 1 {
		return Result{Rho: rho}, false
	}
	wq := rho / (mu * (1 - rho))
	return Result{
		Rho:             rho,
		Utilization:     rho,
		Throughput:      lambda,
		WaitProbability: rho,
		Wq:              wq,
		W:               wq + 1/mu,
		Lq:              rho * rho / (1 - rho),
		L:               rho / (1 - rho),
	}, true
}

// MG1 solves the M/G/1 queue with the Pollaczek-Khinchine formula, given the
// mean and variance of the service time.
func MG1(lambda, serviceMean, serviceVariance float64) (Result, bool) {
	if !positive(lambda, serviceMean) || serviceVariance < 0 {
		return Result{}, false
	}
	rho := lambda * serviceMean
	if rho >= 1 {
		return Result{Rho: rho}, false
	}
	secondMoment := serviceVariance + serviceMean*serviceMean
	wq := lambda * secondMoment / (2 * (1 - rho))
	w := wq + serviceMean
	return Result{
		Rho:             rho,
		Utilization:     rho,
		Throughput:      lambda,
		WaitProbability: rho,
		Wq:              wq,
		W:               w,
		Lq:              lambda * wq,
		L:               lambda * w,
	}, true
}

// ErlangB returns the blocking probability of an M/M/c/c loss system with c
// servers and offered traffic a = lambda/mu Erlangs.
func ErlangB(c int, a float64) (float64, bool) {
	if c < 0 || !positive(a) {
		return 0, false
	}
	b := 1.0
	for n := 1; n <= c; n++ {
		b = a * b / (float64(n) + a*b)
	}
	return b, true
}

// ErlangC returns the probability that an arriving job waits in an M/M/c queue
// with offered traffic a Erlangs. Requires a < c.
func ErlangC(c int, a float64) (float64, bool) {
	if c < 1 || !positive(a) || a >= float64(c) {
		return 0, false
	}
	b, _ := ErlangB(c, a)
	return float64(c) * b / (float64(c) - a*(1-b)), true
}

// MMc solves the M/M/c queue with an unbounded buffer.
func MMc(lambda, mu float64, c int) (Result, bool) {
	if !positive(lambda, mu) || c < 1 {
		return Result{}, false
	}
	a := lambda / mu
	rho := a / float64(c)
	pw, ok := ErlangC(c, a)
	if !ok {
		return Result{Rho: rho}, false
	}
	wq := pw / (float64(c)*mu - lambda)
	w := wq + 1/mu
	return Result{
		Rho:             rho,
		Utilization:     rho,
		Throughput:      lambda,
		WaitProbability: pw,
		Wq:              wq,
		W:               w,
		Lq:              lambda * wq,
		L:               lambda * w,
	}, true
}

// MMcK solves the M/M/c/K queue, where k >= c is the total number of jobs the
// system holds (c in service plus k-c buffered). Finite systems are stable for
// any positive rates.
func MMcK(lambda, mu float64, c, k int) (Result, bool) {
	if !positive(lambda, mu) || c < 1 || k < c {
		return Result{}, false
	}
	a := lambda / mu
	p := make([]float64, k+1)
	p[0] = 1
	sum := 1.0
	for n := 1; n <= k; n++ {
		p[n] = p[n-1] * a / float64(min(n, c))
		sum += p[n]
	}
	var l, lq, waiting float64
	for n := range p {
		p[n] /= sum
		l += float64(n) * p[n]
		if n > c {
			lq += float64(n-c) * p[n]
		}
		if n >= c && n < k {
			waiting += p[n]
		}
	}
	loss := p[k]
	throughput := lambda * (1 - loss)
	w := l / throughput
	wq := max(w-1/mu, 0)
	res := Result{
		Rho:             a / float64(c),
		Utilization:     throughput / (float64(c) * mu),
		Throughput:      throughput,
		LossProbability: loss,
		Wq:              wq,
		W:               w,
		Lq:              lq,
		L:               l,
	}
	if loss < 1 {
		res.WaitProbability = waiting / (1 - loss)
	}
	return res, true
}

// MM1K solves the single-server M/M/1/K queue.
func MM1K(lambda, mu float64, k int) (Result, bool) {
	return MMcK(lambda, mu, 1, k)
}
