// Package ad implements a small reverse-mode differentiation tape over
// spectral (RGB) values, used by the radiative backpropagation passes to turn
// per-vertex adjoint radiance into scene parameter gradients without
// recording the whole light transport computation.
package ad

import (
	"github.com/df07/go-transient-raytracer/pkg/core"
)

// Param is a differentiable scalar scene parameter. Gradients are accumulated
// atomically so many lanes can backpropagate into the same parameter at once.
type Param struct {
	name  string
	value float64
	grad  core.AtomicFloat64
}

// NewParam creates a named differentiable parameter
func NewParam(name string, value float64) *Param {
	return &Param{name: name, value: value}
}

// Name returns the parameter name
func (p *Param) Name() string { return p.name }

// Value returns the current parameter value
func (p *Param) Value() float64 { return p.value }

// SetValue replaces the parameter value (used by optimization steps)
func (p *Param) SetValue(v float64) { p.value = v }

// Grad returns the accumulated gradient
func (p *Param) Grad() float64 { return p.grad.Load() }

// AddGrad atomically accumulates into the gradient
func (p *Param) AddGrad(g float64) { p.grad.Add(g) }

// ClearGrad resets the accumulated gradient to zero
func (p *Param) ClearGrad() { p.grad.Store(0) }

// Spec is one node of the tape: a spectral value plus the backward rule that
// propagates an incoming adjoint to the node's inputs or parameters.
type Spec struct {
	Val  core.Vec3
	grad core.Vec3
	back func(g core.Vec3)
}

// Tape records Spec nodes in creation order. Backward seeds one or more roots
// and then sweeps the nodes once in reverse order, applying each node's
// backward rule to its accumulated adjoint.
type Tape struct {
	nodes   []*Spec
	touched bool
}

// NewTape creates an empty tape
func NewTape() *Tape {
	return &Tape{}
}

func (t *Tape) record(n *Spec) *Spec {
	t.nodes = append(t.nodes, n)
	return n
}

// GradEnabled reports whether any recorded node reaches a differentiable
// parameter. A backward render whose every tape stays untouched indicates the
// output is disconnected from all parameters.
func (t *Tape) GradEnabled() bool {
	return t.touched
}

// Const records a leaf with no derivative
func (t *Tape) Const(v core.Vec3) *Spec {
	return t.record(&Spec{Val: v})
}

// Scaled records base * p.Value() with the derivative flowing into p
func (t *Tape) Scaled(p *Param, base core.Vec3) *Spec {
	t.touched = true
	return t.record(&Spec{
		Val: base.Multiply(p.Value()),
		back: func(g core.Vec3) {
			p.AddGrad(g.Dot(base))
		},
	})
}

// Add records a + b
func (t *Tape) Add(a, b *Spec) *Spec {
	return t.record(&Spec{
		Val: a.Val.Add(b.Val),
		back: func(g core.Vec3) {
			a.grad = a.grad.Add(g)
			b.grad = b.grad.Add(g)
		},
	})
}

// Mul records the component-wise product a * b
func (t *Tape) Mul(a, b *Spec) *Spec {
	return t.record(&Spec{
		Val: a.Val.MultiplyVec(b.Val),
		back: func(g core.Vec3) {
			a.grad = a.grad.Add(g.MultiplyVec(b.Val))
			b.grad = b.grad.Add(g.MultiplyVec(a.Val))
		},
	})
}

// Scale records a * s for a constant scalar s
func (t *Tape) Scale(a *Spec, s float64) *Spec {
	return t.record(&Spec{
		Val: a.Val.Multiply(s),
		back: func(g core.Vec3) {
			a.grad = a.grad.Add(g.Multiply(s))
		},
	})
}

// MulVec records the component-wise product a * v for a constant vector v
func (t *Tape) MulVec(a *Spec, v core.Vec3) *Spec {
	return t.record(&Spec{
		Val: a.Val.MultiplyVec(v),
		back: func(g core.Vec3) {
			a.grad = a.grad.Add(g.MultiplyVec(v))
		},
	})
}

// ReplaceGrad records a value-substitution node: the primal magnitude comes
// from the constant primal argument while the derivative flows through
// attached unchanged. This is the primitive behind the detached/attached BSDF
// cancellation in the backward pass.
func (t *Tape) ReplaceGrad(primal core.Vec3, attached *Spec) *Spec {
	return t.record(&Spec{
		Val: primal,
		back: func(g core.Vec3) {
			attached.grad = attached.grad.Add(g)
		},
	})
}

// Seed accumulates an adjoint onto a root node. Several roots may be seeded
// before a single Backward sweep.
func (t *Tape) Seed(root *Spec, adjoint core.Vec3) {
	root.grad = root.grad.Add(adjoint)
}

// Backward sweeps the tape once in reverse creation order, propagating every
// node's accumulated adjoint through its backward rule.
func (t *Tape) Backward() {
	for i := len(t.nodes) - 1; i >= 0; i-- {
		n := t.nodes[i]
		if n.back != nil && !n.grad.IsZero() {
			n.back(n.grad)
		}
	}
}
