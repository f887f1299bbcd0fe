package log

// Canonical field name constants for structured logging.
const (
	FieldRequestID = "request_id"
	FieldJobID     = "job_id"
	FieldEvent     = "event"
	FieldComponent = "component"

	FieldWorkerID = "worker_id"
	FieldGPUID    = "gpu_id"
	FieldStage    = "stage"
	FieldState    = "state"

	FieldInputPath  = "input_path"
	FieldOutputPath = "output_path"
	FieldPath       = "path"
)
