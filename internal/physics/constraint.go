package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/rubble/internal/dynamo"
)

const (
	DefaultStiffness      = 0.9
	DefaultBreakingStrain = 2.0
)

// Kind is the closed set of constraint variants.
type Kind uint8

const (
	// KindDistance keeps two particles at a rest distance.
	KindDistance Kind = iota
	// KindPoint pulls one particle onto a fixed anchor.
	KindPoint
	// KindContact is a one-sided distance constraint created by collision
	// detection. It lives for a single step.
	KindContact
)

func (k Kind) String() string {
	switch k {
	case KindDistance:
		return "distance"
	case KindPoint:
		return "point"
	case KindContact:
		return "contact"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Constraint is a positional constraint owned by a World. A and B are
// non-owning; B is nil for point constraints.
type Constraint struct {
	Element

	Kind   Kind
	A, B   *Particle
	Anchor dynamo.Vec2

	// Distance is the rest distance (zero for point constraints).
	Distance  float64
	Stiffness float64

	Breakable      bool
	BreakingStrain float64

	// CurrentDistance is refreshed on every enforcement.
	CurrentDistance float64

	world   *World
	removed bool
}

// ConstraintOption customises a constraint at creation.
type ConstraintOption func(*constraintConfig)

type constraintConfig struct {
	rest           float64
	hasRest        bool
	anchor         dynamo.Vec2
	hasAnchor      bool
	stiffness      float64
	breakable      bool
	breakingStrain float64
}

// WithRestDistance overrides the default rest distance (the current separation).
func WithRestDistance(d float64) ConstraintOption {
	return func(c *constraintConfig) {
		c.rest = d
		c.hasRest = true
	}
}

// WithStiffness sets stiffness in (0, 1]. The default is DefaultStiffness.
func WithStiffness(s float64) ConstraintOption {
	return func(c *constraintConfig) { c.stiffness = s }
}

// WithAnchor sets the anchor of a point constraint. The default is the
// particle's current position.
func WithAnchor(a dynamo.Vec2) ConstraintOption {
	return func(c *constraintConfig) {
		c.anchor = a
		c.hasAnchor = true
	}
}

// WithBreakingStrain makes the constraint breakable at the given strain.
func WithBreakingStrain(s float64) ConstraintOption {
	return func(c *constraintConfig) {
		c.breakable = true
		c.breakingStrain = s
	}
}

func newConstraintConfig(opts []ConstraintOption) (constraintConfig, error) {
	cfg := constraintConfig{
		stiffness:      DefaultStiffness,
		breakingStrain: DefaultBreakingStrain,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if !(cfg.stiffness > 0 && cfg.stiffness <= 1) {
		return cfg, fmt.Errorf("%w: stiffness must be in (0, 1], got %v", dynamo.ErrInvalidConstraint, cfg.stiffness)
	}
	if cfg.hasRest && !(cfg.rest >= 0 && !math.IsInf(cfg.rest, 0)) {
		return cfg, fmt.Errorf("%w: rest distance must be finite and non-negative, got %v", dynamo.ErrInvalidConstraint, cfg.rest)
	}
	if !(cfg.breakingStrain > 0) {
		return cfg, fmt.Errorf("%w: breaking strain must be positive, got %v", dynamo.ErrInvalidConstraint, cfg.breakingStrain)
	}
	if cfg.hasAnchor && !cfg.anchor.IsValid() {
		return cfg, fmt.Errorf("%w: anchor must be finite", dynamo.ErrInvalidConstraint)
	}
	return cfg, nil
}

// adjustedStiffness maps stiffness to a per-iteration factor so that n
// applications compound to the requested stiffness.
func adjustedStiffness(stiffness float64, iterations int) float64 {
	return 1 - math.Pow(1-stiffness, 1/float64(iterations))
}

func (c *Constraint) enforce(iterations int) {
	switch c.Kind {
	case KindDistance, KindContact:
		c.enforceDistance(iterations)
	case KindPoint:
		c.enforcePoint(iterations)
	}
}

func (c *Constraint) enforceDistance(iterations int) {
	a, b := c.A, c.B
	c.CurrentDistance = a.Pos.DistanceFrom(b.Pos)
	if c.CurrentDistance == c.Distance {
		return
	}
	// contacts only push apart
	if c.Kind == KindContact && c.CurrentDistance > c.Distance {
		return
	}
	if a.Fixed && b.Fixed {
		return
	}

	correction := (c.CurrentDistance - c.Distance) * adjustedStiffness(c.Stiffness, iterations)
	dir := b.Pos.Sub(a.Pos).Unit()

	switch {
	case b.Fixed:
		a.Pos = a.Pos.Add(dir.Scale(correction))
	case a.Fixed:
		b.Pos = b.Pos.Sub(dir.Scale(correction))
	default:
		total := a.Mass + b.Mass
		a.Pos = a.Pos.Add(dir.Scale(correction * b.Mass / total))
		b.Pos = b.Pos.Sub(dir.Scale(correction * a.Mass / total))
	}
}

func (c *Constraint) enforcePoint(iterations int) {
	p := c.A
	c.CurrentDistance = p.Pos.DistanceFrom(c.Anchor)
	if c.CurrentDistance == 0 || p.Fixed {
		return
	}
	correction := c.CurrentDistance * adjustedStiffness(c.Stiffness, iterations)
	dir := p.Pos.Sub(c.Anchor).Unit()
	p.Pos = p.Pos.Sub(dir.Scale(correction))
}

// Strain is the relative deviation from rest measured at the last enforcement.
// Constraints with zero rest distance (point constraints) report the absolute
// deviation instead.
func (c *Constraint) Strain() float64 {
	delta := math.Abs(c.CurrentDistance - c.Distance)
	if c.Distance == 0 {
		return delta
	}
	return delta / c.Distance
}

func (c *Constraint) hasBroken() bool {
	return c.Breakable && c.Strain() > c.BreakingStrain
}

// References reports whether the constraint holds p.
func (c *Constraint) References(p *Particle) bool {
	return c.A == p || (c.B != nil && c.B == p)
}

func (c *Constraint) detached() bool {
	return c.A.removed || (c.B != nil && c.B.removed)
}
