package chain

// Chains holds the parent chain reader and, when configured, the orbit chain
// reader. Code that needs the orbit chain takes it as an explicit argument
// after checking HasOrbit once.
type Chains struct {
	Parent *Reader
	Orbit  *Reader
}

func NewChains(parent, orbit *Reader) Chains {
	return Chains{Parent: parent, Orbit: orbit}
}

func (c Chains) HasOrbit() bool {
	return c.Orbit != nil
}
