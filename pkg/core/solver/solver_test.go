package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_StringAndParse(t *testing.T) {
	for _, st := range []Status{StatusOptimal, StatusFeasible, StatusInfeasible, StatusModelInvalid, StatusUnknown} {
		assert.Equal(t, st, ParseStatus(st.String()))
	}
	assert.Equal(t, StatusUnknown, ParseStatus("garbage"))
}

func TestStatus_HasSolution(t *testing.T) {
	assert.True(t, StatusOptimal.HasSolution())
	assert.True(t, StatusFeasible.HasSolution())
	assert.False(t, StatusInfeasible.HasSolution())
	assert.False(t, StatusModelInvalid.HasSolution())
	assert.False(t, StatusUnknown.HasSolution())
}

func TestExpr_Eval(t *testing.T) {
	expr := Sum(0, 1, 2).Plus(Expr{{Var: 3, Coef: -2}})
	values := map[Var]bool{0: true, 2: true, 3: true}

	assert.Equal(t, 0, expr.Eval(func(v Var) bool { return values[v] }))
	assert.Len(t, expr, 4)
}

func TestRelation_Holds(t *testing.T) {
	assert.True(t, LessEq.Holds(1, 1))
	assert.False(t, LessEq.Holds(2, 1))
	assert.True(t, GreaterEq.Holds(2, 1))
	assert.False(t, GreaterEq.Holds(0, 1))
	assert.True(t, Equal.Holds(0, 0))
	assert.False(t, Equal.Holds(1, 0))
}

func TestResult_ValueWithoutSolution(t *testing.T) {
	r := NewResult(StatusInfeasible, 0, Stats{}, []bool{true})
	assert.False(t, r.Value(0), "values are not readable without a solution")

	r = NewResult(StatusFeasible, 0, Stats{}, []bool{true})
	assert.True(t, r.Value(0))
	assert.False(t, r.Value(5), "out of range handles read as false")
}
