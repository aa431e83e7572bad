package health

// ConsensusStatus reports which beacon API surfaces returned usable data.
// Functional is derived, never set independently.
type ConsensusStatus struct {
	FinalityWorking bool
	HeadWorking     bool
	Functional      bool
}

// ValidateConsensus derives a ConsensusStatus from the finalized and head
// slot strings returned by the beacon API.
//
// A slot counts as working when it is present, non-empty, and not the JSON
// literal "null" (which is what a missing field renders as once extracted).
// Both surfaces are required for Functional: a degraded consensus client can
// serve one endpoint while the other times out or errors, and such a node
// must not be treated as functional.
func ValidateConsensus(finalizedSlot, headSlot string) ConsensusStatus {
	st := ConsensusStatus{
		FinalityWorking: slotPresent(finalizedSlot),
		HeadWorking:     slotPresent(headSlot),
	}
	st.Functional = st.FinalityWorking && st.HeadWorking
	return st
}

func slotPresent(slot string) bool {
	return slot != "" && slot != "null"
}
