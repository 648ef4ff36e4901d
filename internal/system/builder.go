package system

// Builder assembles hand-made systems for scripted scenarios, bypassing
// random generation. Orbits it creates turn clockwise at unit speed.
type Builder struct {
	bodies []Body
}

// NewBuilder starts a system with a sun of the given radius.
func NewBuilder(sunRadius float64) *Builder {
	return &Builder{bodies: []Body{{Radius: sunRadius}}}
}

// Add attaches a body orbiting parent and returns its index.
func (b *Builder) Add(parent int, radius, dist, angle float64, kind FeatureKind) int {
	i := len(b.bodies)
	b.bodies[parent].Moons = append(b.bodies[parent].Moons, i)
	b.bodies = append(b.bodies, Body{
		Radius:  radius,
		Orbit:   &Orbit{Parent: parent, Distance: dist, Angle: angle, Speed: 1},
		Feature: Feature{Kind: kind},
	})
	return i
}

// Build validates the bodies and returns the finished system.
func (b *Builder) Build() (*System, error) {
	return New(b.bodies)
}
