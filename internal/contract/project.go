package contract

type CreateProjectRequest struct {
	Name    string
	ShortID string // optional, e.g. WEB01
}

type ImportResult struct {
	ProjectID      string `json:"projectId"`
	ProjectName    string `json:"projectName"`
	TaskCount      int    `json:"taskCount"`
	CompletedCount int    `json:"completedCount"`
}
