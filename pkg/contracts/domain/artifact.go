package domain

// ReportContentType is the media type of every composed report.
const ReportContentType = "application/pdf"

// ELNTag is applied to experiments pushed to the external ELN.
const ELNTag = "BET_result"

// ReportArtifact is the binary output of the report pipeline. Callers own
// persistence and transport; the composer only ever touches these buffers.
type ReportArtifact struct {
	Data        []byte `json:"-"`
	ContentType string `json:"content_type"`
	FileName    string `json:"file_name"`
	// Summary is the rich-text body attached when the artifact is pushed
	// to the ELN collaborator.
	Summary string `json:"summary"`
}

// PipelineStage tracks how far an uploaded workbook made it through the
// processing pipeline.
type PipelineStage string

const (
	StageUploaded         PipelineStage = "uploaded"
	StageExtracted        PipelineStage = "extracted"
	StageFitComputed      PipelineStage = "fit_computed"
	StageRendered         PipelineStage = "rendered"
	StageReported         PipelineStage = "reported"
	StageExtractionFailed PipelineStage = "extraction_failed"
)

// Terminal reports whether the stage ends the pipeline.
func (s PipelineStage) Terminal() bool {
	return s == StageReported || s == StageExtractionFailed
}
