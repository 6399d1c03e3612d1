package metrics

import (
	"github.com/san-kum/rubble/internal/physics"
)

// MaxStrain is the largest strain seen on any distance or point constraint.
// Contacts are ignored.
type MaxStrain struct {
	name string
	max  float64
}

func NewMaxStrain() *MaxStrain {
	return &MaxStrain{name: "max_strain"}
}

func (m *MaxStrain) Name() string { return m.name }

func (m *MaxStrain) Observe(w *physics.World) {
	for _, c := range w.Constraints() {
		if c.Kind == physics.KindContact {
			continue
		}
		m.max = max(m.max, c.Strain())
	}
}

func (m *MaxStrain) Value() float64 { return m.max }

func (m *MaxStrain) Reset() { m.max = 0 }

// Contacts is the mean number of colliding pairs per step.
type Contacts struct {
	name    string
	total   int
	samples int
}

func NewContacts() *Contacts {
	return &Contacts{name: "contacts"}
}

func (c *Contacts) Name() string { return c.name }

func (c *Contacts) Observe(w *physics.World) {
	c.total += len(w.Collisions())
	c.samples++
}

func (c *Contacts) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return float64(c.total) / float64(c.samples)
}

func (c *Contacts) Reset() {
	c.total = 0
	c.samples = 0
}
