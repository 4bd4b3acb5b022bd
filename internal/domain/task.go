package domain

// RenderTask is the message published for asynchronous rendering.
type RenderTask struct {
	JobID   string           `json:"job_id"`
	Request WatermarkRequest `json:"request"`
}

const (
	KafkaTopicJobs = "watermark-jobs"
	KafkaGroupID   = "watermark-worker-group"
)
