//go:build !cgo || noglpk

package glpksolver

func solveProblem(*Model) (*solution, error) {
	return nil, ErrUnavailable
}
