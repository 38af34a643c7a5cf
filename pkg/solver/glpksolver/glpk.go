//go:build cgo && !noglpk

package glpksolver

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/lukpank/go-glpk/glpk"

	"github.com/kiddos/scheduler/pkg/core/solver"
)

// solveProblem loads m into a fresh GLPK problem and runs the MIP solver.
// GLPK keeps per-thread state, so the whole run stays on one OS thread.
func solveProblem(m *Model) (*solution, error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	lp := glpk.New()
	defer lp.Delete()
	lp.SetProbName("roster")
	lp.SetObjDir(glpk.ObjDir(glpk.MIN))

	if len(m.names) > 0 {
		lp.AddCols(len(m.names))
	}
	for j, name := range m.names {
		col := j + 1
		lp.SetColName(col, name)
		lp.SetColKind(col, glpk.VarType(glpk.BV))
		lp.SetObjCoef(col, m.objective[j])
	}

	if len(m.rows) > 0 {
		lp.AddRows(len(m.rows))
	}
	for i, r := range m.rows {
		idx := i + 1
		lp.SetRowName(idx, r.name)
		switch r.kind {
		case boundUpper:
			lp.SetRowBnds(idx, glpk.BndsType(glpk.UP), 0, r.ub)
		case boundLower:
			lp.SetRowBnds(idx, glpk.BndsType(glpk.LO), r.lb, 0)
		default:
			lp.SetRowBnds(idx, glpk.BndsType(glpk.FX), r.lb, r.ub)
		}

		// ind[0] and val[0] are ignored by GLPK.
		ind := make([]int32, len(r.cols)+1)
		val := make([]float64, len(r.cols)+1)
		for k := range r.cols {
			ind[k+1] = r.cols[k] + 1
			val[k+1] = r.coefs[k]
		}
		lp.SetMatRow(idx, ind, val)
	}

	iocp := glpk.NewIocp()
	iocp.SetPresolve(true)
	iocp.SetMsgLev(glpk.MsgLev(glpk.MSG_ERR))

	if err := lp.Intopt(iocp); err != nil {
		if infeasibleIntopt(err, lp.MipStatus()) {
			return &solution{status: solver.StatusInfeasible}, nil
		}
		return nil, fmt.Errorf("glpk intopt failed: %w", err)
	}

	sol := &solution{}
	switch lp.MipStatus() {
	case glpk.OPT:
		sol.status = solver.StatusOptimal
	case glpk.FEAS:
		sol.status = solver.StatusFeasible
	case glpk.NOFEAS:
		sol.status = solver.StatusInfeasible
	default:
		sol.status = solver.StatusUnknown
	}
	if !sol.status.HasSolution() {
		return sol, nil
	}

	sol.objective = lp.MipObjVal()
	sol.values = make([]bool, len(m.names))
	for j := range m.names {
		sol.values[j] = lp.MipColVal(j+1) > 0.5
	}
	return sol, nil
}

// infeasibleIntopt reports whether an Intopt error means the problem has no
// integer solution. The presolver returns ENOPFS without setting the MIP
// status when the LP relaxation is already infeasible.
func infeasibleIntopt(err error, status glpk.SolStat) bool {
	var optErr glpk.OptError
	if errors.As(err, &optErr) && (optErr == glpk.ENOPFS || optErr == glpk.ENOFEAS) {
		return true
	}
	return status == glpk.NOFEAS
}
