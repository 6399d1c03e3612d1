package physics

// Element carries the age/lifetime bookkeeping shared by particles and
// constraints. Age counts completed cleanup passes since creation.
type Element struct {
	age      int
	lifetime int
	mortal   bool
}

func (e *Element) Age() int { return e.age }

// Lifetime returns the age at which the element expires and whether one is set.
func (e *Element) Lifetime() (int, bool) { return e.lifetime, e.mortal }

// SetLifetime makes the element expire once its age reaches n.
func (e *Element) SetLifetime(n int) {
	e.lifetime = n
	e.mortal = true
}

// ClearLifetime makes the element live until it is removed explicitly.
func (e *Element) ClearLifetime() {
	e.lifetime = 0
	e.mortal = false
}

// Expired reports whether the element must be removed on the next cleanup.
func (e *Element) Expired() bool {
	return e.mortal && e.age >= e.lifetime
}

func (e *Element) tick() { e.age++ }
