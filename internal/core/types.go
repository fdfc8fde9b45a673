package core

// PlayerBundle represents one fetched (or locally loaded) player script.
type PlayerBundle struct {
	URL       string
	Version   string
	LocalPath string
	Body      string
}

// Script is the assembled, standalone decode script carved out of a bundle.
// DecipherName and TransformName are always the same two canonical bindings;
// they are carried here so executors never hardcode them in two places.
type Script struct {
	Source        string
	DecipherName  string
	TransformName string
}

// Format represents one playable stream variant of a video.
type Format struct {
	Itag         int
	URL          string
	Quality      string
	QualityLabel string
	MimeType     string
	Bitrate      int
	FPS          int
	Width        int
	Height       int
	AudioQuality string
}

// PipelineState holds the data as it flows through the CLI stages.
type PipelineState struct {
	Bundle  *PlayerBundle
	Script  *Script
	Formats []Format
}

func NewPipelineState() *PipelineState {
	return &PipelineState{}
}
