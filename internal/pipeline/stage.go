package pipeline

// Kind identifies what a Run does.
type Kind int

const (
	KindInstall Kind = iota
	KindDiscovery
	KindEasyInstall
	KindApply
)

func (k Kind) String() string {
	switch k {
	case KindInstall:
		return "install"
	case KindDiscovery:
		return "discovery"
	case KindEasyInstall:
		return "easy-install"
	case KindApply:
		return "apply"
	default:
		return "unknown"
	}
}

// Stage is one named step of a pipeline.
type Stage int

const (
	StageIdle Stage = iota

	// Install pipeline.
	StageCheckingPrereqs
	StageCleaning
	StageInstallingDeps
	StageConfiguring
	StageFinalizing
	StageAwaitingElevatedScript
	StageCloningRepo
	StageBuilding

	// Discovery pipeline.
	StageRunning
	StageParsingOutput
	StagePersistingResult
	StageTriggeringInstall

	// Apply pipeline.
	StagePatchingConfig
	StageRestartingService

	// Terminal stages.
	StageDone
	StageFailed
	StageCancelled
)

var stageNames = map[Stage]string{
	StageIdle:                   "Idle",
	StageCheckingPrereqs:        "CheckingPrereqs",
	StageCleaning:               "Cleaning",
	StageInstallingDeps:         "InstallingDeps",
	StageConfiguring:            "Configuring",
	StageFinalizing:             "Finalizing",
	StageAwaitingElevatedScript: "AwaitingElevatedScript",
	StageCloningRepo:            "CloningRepo",
	StageBuilding:               "Building",
	StageRunning:                "Running",
	StageParsingOutput:          "ParsingOutput",
	StagePersistingResult:       "PersistingResult",
	StageTriggeringInstall:      "TriggeringInstall",
	StagePatchingConfig:         "PatchingConfig",
	StageRestartingService:      "RestartingService",
	StageDone:                   "Done",
	StageFailed:                 "Failed",
	StageCancelled:              "Cancelled",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "Unknown"
}

// Terminal reports whether no further transitions follow s.
func (s Stage) Terminal() bool {
	return s == StageDone || s == StageFailed || s == StageCancelled
}
