package apply

// FileStatus is the per-file outcome of an apply run.
type FileStatus string

const (
	StatusApplied FileStatus = "applied"
	StatusFailed  FileStatus = "failed"
	StatusSkipped FileStatus = "skipped"
)

// FileAction classifies what an applied candidate did to its file.
type FileAction string

const (
	ActionModified FileAction = "modified"
	ActionCreated  FileAction = "created"
	ActionDeleted  FileAction = "deleted"
)

// FileResult reports the outcome for one candidate file.
type FileResult struct {
	Path       string     `json:"path"`
	Status     FileStatus `json:"status"`
	Action     FileAction `json:"action,omitempty"`
	Error      string     `json:"error,omitempty"`
	ErrorCode  string     `json:"errorCode,omitempty"`
	OpsApplied int        `json:"opsApplied"`
	Stat       DiffStat   `json:"stat"`
}

// Result summarizes an apply run. Files are ordered by path. Stat is
// the total over applied files only.
type Result struct {
	RunID      string       `json:"runId"`
	BranchName string       `json:"branchName,omitempty"`
	Files      []FileResult `json:"files"`
	Stat       DiffStat     `json:"stat"`
}

// Applied returns the number of files that applied cleanly.
func (r *Result) Applied() int {
	n := 0
	for _, f := range r.Files {
		if f.Status == StatusApplied {
			n++
		}
	}
	return n
}

// Failed returns the number of files that failed validation or application.
func (r *Result) Failed() int {
	n := 0
	for _, f := range r.Files {
		if f.Status == StatusFailed {
			n++
		}
	}
	return n
}

// CountAction returns how many applied files performed the given action.
func (r *Result) CountAction(action FileAction) int {
	n := 0
	for _, f := range r.Files {
		if f.Status == StatusApplied && f.Action == action {
			n++
		}
	}
	return n
}
