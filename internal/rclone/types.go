package rclone

// Status is the engine's report for a single job as returned by job/status.
type Status struct {
	ID        uint64  `json:"id"`
	Finished  bool    `json:"finished"`
	Success   bool    `json:"success"`
	Duration  float64 `json:"duration"`
	Error     string  `json:"error"`
	StartTime string  `json:"startTime"`
}

type syncRequest struct {
	SrcFs string `json:"srcFs"`
	DstFs string `json:"dstFs"`
	Async bool   `json:"_async"`
}

type syncResponse struct {
	JobID uint64 `json:"jobid"`
}

type jobStatusRequest struct {
	JobID uint64 `json:"jobid"`
}

type jobListResponse struct {
	JobIDs []uint64 `json:"jobids"`
}

type listRemotesResponse struct {
	Remotes []string `json:"remotes"`
}

type errorResponse struct {
	Error string `json:"error"`
}
