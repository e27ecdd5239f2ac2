package release

// Stage names one step of the release sequence.
type Stage string

// Stages in execution order.
const (
	StageValidateType   Stage = "validate_type"
	StageCheckCleanTree Stage = "check_clean_tree"
	StageRunCI          Stage = "run_ci"
	StageReadManifest   Stage = "read_manifest"
	StageComputeNext    Stage = "compute_next_version"
	StageWriteManifest  Stage = "write_manifest"
	StageWriteChangelog Stage = "write_changelog"
	StageCommitAndTag   Stage = "commit_and_tag"
	StageDone           Stage = "done"
)

// Stages lists the full sequence.
var Stages = []Stage{
	StageValidateType,
	StageCheckCleanTree,
	StageRunCI,
	StageReadManifest,
	StageComputeNext,
	StageWriteManifest,
	StageWriteChangelog,
	StageCommitAndTag,
	StageDone,
}

// EventKind distinguishes stage transitions.
type EventKind int

// Event kinds.
const (
	StageStarted EventKind = iota
	StageCompleted
	StageFailed
)

func (k EventKind) String() string {
	switch k {
	case StageStarted:
		return "started"
	case StageCompleted:
		return "completed"
	case StageFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event reports a stage transition. Detail is a short human summary, set on
// completion where there is something worth showing.
type Event struct {
	Stage  Stage
	Kind   EventKind
	Detail string
	Err    error
}

// Observer receives stage events in order.
type Observer func(Event)
