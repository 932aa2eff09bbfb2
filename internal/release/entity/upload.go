package entity

// Outcome is the result of a single asset upload.
type Outcome int

const (
	OutcomeUploaded Outcome = iota
	OutcomeSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "already uploaded, skipping"
	default:
		return "done"
	}
}

// UploadResult records what happened to one local file in an upload run.
type UploadResult struct {
	Path    string
	Name    string
	Outcome Outcome
	Err     error
}
