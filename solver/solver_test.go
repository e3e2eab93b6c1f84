package solver

import "testing"

func TestDefaultITSParamIsUsable(t *testing.T) {
	p := DefaultITSParam()
	if p.MaxIt <= 0 || p.Tol <= 0 {
		t.Fatalf("DefaultITSParam() = %+v, want positive MaxIt/Tol", p)
	}
	if p.Kind.String() != "CG" {
		t.Fatalf("default Kind.String() = %q, want CG", p.Kind.String())
	}
}

func TestSolverKindString(t *testing.T) {
	cases := map[SolverKind]string{
		CG:       "CG",
		BiCGStab: "BiCGStab",
		GMRES:    "GMRES",
		FGMRES:   "FGMRES",
		GCG:      "GCG",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Fatalf("%v.String() = %q, want %q", int(k), got, want)
		}
	}
}

func TestDefaultAMGParamCRDefaults(t *testing.T) {
	p := DefaultAMGParam()
	if p.CR.Nu != 3 {
		t.Fatalf("CR.Nu = %d, want 3", p.CR.Nu)
	}
	if p.CR.ThetaG != 0.8 {
		t.Fatalf("CR.ThetaG = %v, want 0.8", p.CR.ThetaG)
	}
}
