package types

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseOpening
	PhaseOpen
)

type Hinge struct {
	Angle   float32
	Stiff   bool `nz:"bStiff"`
	Phase   Phase
	Offsets [3]float32
	Tags    []string
	Weights map[string]float64
	Labels  map[string]struct{}
	Note    string `nz:",transient"`
	Mesh    *UStaticMesh
	hidden  int
}

type Panel struct {
	Hinges []Hinge
	Scale  float64 `nztype:"float"`
}

// UStaticMesh matches the runtime class of the same name.
type UStaticMesh struct{}
