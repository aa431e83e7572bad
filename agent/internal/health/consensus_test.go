package health

import "testing"

func TestValidateConsensus(t *testing.T) {
	tests := []struct {
		name           string
		finalized      string
		head           string
		wantFinality   bool
		wantHead       bool
		wantFunctional bool
	}{
		{"both surfaces working", "9312704", "9312766", true, true, true},
		{"finality only is not functional", "9312704", "", true, false, false},
		{"head only is not functional", "", "9312766", false, true, false},
		{"both missing", "", "", false, false, false},
		{"json null literal counts as missing", "9312704", "null", true, false, false},
		{"both null", "null", "null", false, false, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			st := ValidateConsensus(tc.finalized, tc.head)
			if st.FinalityWorking != tc.wantFinality {
				t.Errorf("FinalityWorking = %v, want %v", st.FinalityWorking, tc.wantFinality)
			}
			if st.HeadWorking != tc.wantHead {
				t.Errorf("HeadWorking = %v, want %v", st.HeadWorking, tc.wantHead)
			}
			if st.Functional != tc.wantFunctional {
				t.Errorf("Functional = %v, want %v", st.Functional, tc.wantFunctional)
			}
		})
	}
}
