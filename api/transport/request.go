package transport

// TaskCreateRequest carries the creation parameters. Empty fields mean
// "unset" and trigger the board's suggestion defaults.
type TaskCreateRequest struct {
	Title    string `json:"title"`
	Category string `json:"category"`
	Priority string `json:"priority"`
	Column   string `json:"column"`
	DueDate  string `json:"dueDate"`
}

// TaskEditRequest is a partial update; absent fields are left unchanged. An
// explicit empty dueDate clears the deadline.
type TaskEditRequest struct {
	Title    *string `json:"title"`
	Category *string `json:"category"`
	Priority *string `json:"priority"`
	DueDate  *string `json:"dueDate"`
}

type TaskMoveRequest struct {
	Column string `json:"column"`
}

type SubtaskRequest struct {
	Text string `json:"text"`
}

type AbsorbRequest struct {
	TargetID string `json:"targetId"`
}
