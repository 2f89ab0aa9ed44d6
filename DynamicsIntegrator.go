package ppx

import (
	"math"
)

/// The system derivative: given the elapsed time, the timestep of the stage
/// and a flat state vector, produce the state's time derivative.
type ODE2D func(t, dt float64, state []float64) []float64

/// An explicit Runge-Kutta scheme. Embedded tableaus carry two weight rows
/// whose difference estimates the local error.
type ButcherTableau struct {
	Alpha []float64
	Beta  [][]float64

	Coefs  []float64
	Coefs1 []float64
	Coefs2 []float64

	Stages   int
	Order    int
	Embedded bool
}

func MakeButcherTableau(alpha []float64, beta [][]float64, coefs []float64, stages, order int) ButcherTableau {
	return ButcherTableau{
		Alpha:  alpha,
		Beta:   beta,
		Coefs:  coefs,
		Stages: stages,
		Order:  order,
	}
}

func MakeEmbeddedButcherTableau(alpha []float64, beta [][]float64, coefs1, coefs2 []float64, stages, order int) ButcherTableau {
	return ButcherTableau{
		Alpha:    alpha,
		Beta:     beta,
		Coefs:    coefs2,
		Coefs1:   coefs1,
		Coefs2:   coefs2,
		Stages:   stages,
		Order:    order,
		Embedded: true,
	}
}

var (
	TableauRK1 = MakeButcherTableau(nil, nil, []float64{1.0}, 1, 1)

	TableauRK2 = MakeButcherTableau(
		[]float64{0.5},
		[][]float64{{0.5}},
		[]float64{0.0, 1.0}, 2, 2)

	TableauRK4 = MakeButcherTableau(
		[]float64{0.5, 0.5, 1.0},
		[][]float64{
			{0.5},
			{0.0, 0.5},
			{0.0, 0.0, 1.0},
		},
		[]float64{1.0 / 6.0, 1.0 / 3.0, 1.0 / 3.0, 1.0 / 6.0}, 4, 4)

	TableauRK38 = MakeButcherTableau(
		[]float64{1.0 / 3.0, 2.0 / 3.0, 1.0},
		[][]float64{
			{1.0 / 3.0},
			{-1.0 / 3.0, 1.0},
			{1.0, -1.0, 1.0},
		},
		[]float64{1.0 / 8.0, 3.0 / 8.0, 3.0 / 8.0, 1.0 / 8.0}, 4, 4)

	TableauRKF12 = MakeEmbeddedButcherTableau(
		[]float64{0.5, 1.0},
		[][]float64{
			{0.5},
			{1.0 / 256.0, 255.0 / 256.0},
		},
		[]float64{1.0 / 256.0, 255.0 / 256.0, 0.0},
		[]float64{1.0 / 512.0, 255.0 / 256.0, 1.0 / 512.0}, 3, 2)

	TableauRKF45 = MakeEmbeddedButcherTableau(
		[]float64{0.25, 3.0 / 8.0, 12.0 / 13.0, 1.0, 0.5},
		[][]float64{
			{0.25},
			{3.0 / 32.0, 9.0 / 32.0},
			{1932.0 / 2197.0, -7200.0 / 2197.0, 7296.0 / 2197.0},
			{439.0 / 216.0, -8.0, 3680.0 / 513.0, -845.0 / 4104.0},
			{-8.0 / 27.0, 2.0, -3544.0 / 2565.0, 1859.0 / 4104.0, -11.0 / 40.0},
		},
		[]float64{25.0 / 216.0, 0.0, 1408.0 / 2565.0, 2197.0 / 4104.0, -1.0 / 5.0, 0.0},
		[]float64{16.0 / 135.0, 0.0, 6656.0 / 12825.0, 28561.0 / 56430.0, -9.0 / 50.0, 2.0 / 55.0}, 6, 5)
)

/// The explicit Runge-Kutta integrator. State is the world's flat solver
/// state vector of 6 entries per body; the world mutates it between steps as
/// bodies come and go.
type Integrator struct {
	Tableau ButcherTableau

	State    []float64
	Timestep float64

	// Embedded stepping bounds.
	MinTimestep float64
	MaxTimestep float64
	Tolerance   float64

	elapsed float64

	kvec      [][]float64
	stageBuff []float64
	solution  []float64
}

func MakeIntegrator(tableau ButcherTableau, timestep float64) Integrator {
	return Integrator{
		Tableau:     tableau,
		Timestep:    timestep,
		MinTimestep: timestep / 64.0,
		MaxTimestep: timestep * 64.0,
		Tolerance:   1e-4,
	}
}

func (itg *Integrator) Elapsed() float64 {
	return itg.elapsed
}

func (itg *Integrator) SetElapsed(elapsed float64) {
	itg.elapsed = elapsed
}

func allFinite(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

/// Evaluate every stage derivative for the current state and timestep.
func (itg *Integrator) updateStages(ode ODE2D, dt float64) bool {
	tableau := &itg.Tableau
	n := len(itg.State)

	if len(itg.kvec) != tableau.Stages || (tableau.Stages > 0 && len(itg.kvec[0]) != n) {
		itg.kvec = make([][]float64, tableau.Stages)
		for i := range itg.kvec {
			itg.kvec[i] = make([]float64, n)
		}
		itg.stageBuff = make([]float64, n)
		itg.solution = make([]float64, n)
	}

	copy(itg.kvec[0], ode(itg.elapsed, dt, itg.State))
	for stage := 1; stage < tableau.Stages; stage++ {
		for i := 0; i < n; i++ {
			acc := 0.0
			for prev := 0; prev < stage; prev++ {
				acc += tableau.Beta[stage-1][prev] * itg.kvec[prev][i]
			}
			itg.stageBuff[i] = itg.State[i] + dt*acc
		}
		if !allFinite(itg.stageBuff) {
			return false
		}
		t := itg.elapsed + tableau.Alpha[stage-1]*dt
		copy(itg.kvec[stage], ode(t, dt, itg.stageBuff))
	}
	for stage := 0; stage < tableau.Stages; stage++ {
		if !allFinite(itg.kvec[stage]) {
			return false
		}
	}
	return true
}

func (itg *Integrator) combine(coefs []float64, dt float64, out []float64) {
	tableau := &itg.Tableau
	for i := range out {
		acc := 0.0
		for stage := 0; stage < tableau.Stages; stage++ {
			acc += coefs[stage] * itg.kvec[stage][i]
		}
		out[i] = itg.State[i] + dt*acc
	}
}

/// One fixed step of size Timestep. Returns false, leaving the state
/// untouched, when any stage or the combined solution is non-finite.
func (itg *Integrator) RawForward(ode ODE2D) bool {
	dt := itg.Timestep
	if !itg.updateStages(ode, dt) {
		return false
	}
	itg.combine(itg.Tableau.Coefs, dt, itg.solution)
	if !allFinite(itg.solution) {
		return false
	}
	copy(itg.State, itg.solution)
	itg.elapsed += dt
	return true
}

/// One adaptive step for embedded tableaus: the timestep shrinks until the
/// error estimate between the two embedded solutions fits the tolerance, and
/// grows again when the step was comfortably accurate. The accepted timestep
/// is kept for the next call.
func (itg *Integrator) EmbeddedForward(ode ODE2D) bool {
	tableau := &itg.Tableau
	Assert(tableau.Embedded)

	lower := make([]float64, len(itg.State))
	for {
		dt := FloatClamp(itg.Timestep, itg.MinTimestep, itg.MaxTimestep)
		itg.Timestep = dt
		if !itg.updateStages(ode, dt) {
			return false
		}
		itg.combine(tableau.Coefs1, dt, lower)
		itg.combine(tableau.Coefs2, dt, itg.solution)
		if !allFinite(itg.solution) || !allFinite(lower) {
			return false
		}

		errEstimate := 0.0
		for i := range itg.solution {
			errEstimate = math.Max(errEstimate, math.Abs(itg.solution[i]-lower[i]))
		}
		if errEstimate > itg.Tolerance && dt > itg.MinTimestep {
			itg.Timestep = dt * 0.5
			continue
		}

		copy(itg.State, itg.solution)
		itg.elapsed += dt
		if errEstimate < 0.25*itg.Tolerance {
			itg.Timestep = math.Min(dt*2.0, itg.MaxTimestep)
		}
		return true
	}
}
