package domain

// UploadPhase is the upload half of the pipeline state machine.
// Per-slot compression state is tracked separately in SlotState.
type UploadPhase int

const (
	// PhaseIdle means no upload has been attempted since the last reset.
	PhaseIdle UploadPhase = iota
	// PhaseUploading means an upload is in flight.
	PhaseUploading
	// PhaseSucceeded is terminal until the pipeline is reset.
	PhaseSucceeded
	// PhaseFailed allows a bounded retry.
	PhaseFailed
)

// String returns the string representation.
func (p UploadPhase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseUploading:
		return "uploading"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MaxAttempts is the default attempt ceiling.
const MaxAttempts = 3

// PipelineSnapshot is a consistent copy of the pipeline state.
type PipelineSnapshot struct {
	Phase        UploadPhase
	DocumentType DocumentType
	KycStatus    KycStatus
	Slots        [SlotCount]SlotState

	// Attempt is the number of uploads since the last file selection.
	Attempt int

	// MaxAttempts is the configured ceiling.
	MaxAttempts int

	// Progress is the percentage of the current or last upload.
	Progress int

	// Err is the last local or upload error.
	Err error

	// RetryAvailable is true while a failed upload may be retried.
	RetryAvailable bool
}

// Slot returns the state of one slot.
func (s PipelineSnapshot) Slot(slot Slot) SlotState {
	return s.Slots[slot]
}

// Compressing returns true if any slot is compressing.
func (s PipelineSnapshot) Compressing() bool {
	for _, st := range s.Slots {
		if st.Status == SlotCompressing {
			return true
		}
	}
	return false
}

// AllReady returns true when every slot holds a compressed candidate.
func (s PipelineSnapshot) AllReady() bool {
	for _, st := range s.Slots {
		if st.Status != SlotReady {
			return false
		}
	}
	return true
}

// Locked returns true when inputs must be disabled.
func (s PipelineSnapshot) Locked() bool {
	return s.KycStatus.IsVerified() || s.Phase == PhaseUploading || s.Phase == PhaseSucceeded
}

// CanSubmit mirrors the submit button's enabled state.
func (s PipelineSnapshot) CanSubmit() bool {
	return s.AllReady() && !s.Locked() && s.Attempt < s.MaxAttempts
}
