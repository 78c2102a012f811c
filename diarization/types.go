package diarization

import "fmt"

// UnknownSpeaker is returned by the overlap aligner when a segment does not
// overlap any diarized segment.
const UnknownSpeaker = "UNKNOWN"

// Segment is a time-stamped piece of ASR output.
type Segment struct {
	// Start is the segment start time in seconds.
	Start float64 `json:"start"`
	// End is the segment end time in seconds.
	End float64 `json:"end"`
	// Text is the transcribed text.
	Text string `json:"text"`
}

// Duration returns End-Start.
func (s Segment) Duration() float64 { return s.End - s.Start }

// Chunk is an analysis window inside exactly one segment.
type Chunk struct {
	Start        float64 `json:"start"`
	End          float64 `json:"end"`
	SegmentIndex int     `json:"segment_index"`
}

// Center returns the chunk midpoint.
func (c Chunk) Center() float64 { return (c.Start + c.End) / 2 }

// DiarizedSegment is a segment attributed to a speaker.
type DiarizedSegment struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
	Text    string  `json:"text"`
}

// ClusterMode reports which cluster-count policy produced the labels.
type ClusterMode string

const (
	ModeFixed      ClusterMode = "fixed"
	ModeSilhouette ClusterMode = "silhouette"
	ModeThreshold  ClusterMode = "threshold"
)

// Result is the outcome of a diarization run.
type Result struct {
	// Segments has one entry per input segment, in input order.
	Segments []DiarizedSegment `json:"segments"`
	// NumSpeakers is the highest label plus one.
	NumSpeakers int `json:"num_speakers"`
	// Mode is the cluster-count policy that was applied.
	Mode ClusterMode `json:"mode"`
	// Chunks is the number of chunks that produced an embedding.
	Chunks int `json:"chunks"`
	// Fallback is set when silhouette selection found no valid cluster
	// count and every chunk was put in a single cluster.
	Fallback bool `json:"fallback,omitempty"`
}

// SpeakerID formats a cluster label as SPEAKER_NN.
func SpeakerID(label int) string {
	return fmt.Sprintf("SPEAKER_%02d", label)
}
