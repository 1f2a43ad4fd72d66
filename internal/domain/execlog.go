package domain

import "time"

// ExecutionKey identifies one recurring charge: a subcategory under a
// category for a given user. It is the composite key of the execution log.
type ExecutionKey struct {
	UserID      string `json:"userId"`
	CategoryID  string `json:"categoryId"`
	Subcategory string `json:"subcategory"`
}

// ExecutionLog records when a recurring charge last applied. There is at most
// one record per key; every application overwrites LastExecution.
type ExecutionLog struct {
	Key           ExecutionKey `json:"key"`
	LastExecution time.Time    `json:"lastExecution"`
}
