package siteapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

const (
	WorkflowStatusRunning   = "running"
	WorkflowStatusSucceeded = "succeeded"
	WorkflowStatusFailed    = "failed"
)

// Workflow is the handle of one asynchronous operation running on the
// platform. The client only starts workflows and fetches their status,
// polling to completion is up to the caller.
type Workflow struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Environment string `json:"environment"`
	Status      string `json:"status"`
	Result      string `json:"result"`
	CreatedAt   int64  `json:"created_at"`
	FinishedAt  int64  `json:"finished_at"`
}

// Finished reports whether the workflow has reached a terminal status.
func (w *Workflow) Finished() bool {
	return w.Status == WorkflowStatusSucceeded || w.Status == WorkflowStatusFailed
}

// WorkflowParams carries the parameters of a restore workflow: the archive
// object key and the bucket holding it.
type WorkflowParams struct {
	Key    string `json:"key"`
	Bucket string `json:"bucket"`
}

// CreateWorkflowRequest represents a request to start a workflow.
type CreateWorkflowRequest struct {
	Type   string         `json:"type"`
	Params WorkflowParams `json:"params"`
}

func (c *Client) workflowsPath() string {
	return fmt.Sprintf("/sites/%s/environments/%s/workflows", c.SiteID, c.Environment)
}

func (c *Client) workflowItemPath(workflowID string) string {
	return fmt.Sprintf("/sites/%s/environments/%s/workflows/%s", c.SiteID, c.Environment, workflowID)
}

// CreateWorkflow starts the named workflow against the client's environment
// and returns its handle.
func (c *Client) CreateWorkflow(ctx context.Context, workflowType string, params WorkflowParams) (*Workflow, error) {
	cwr := &CreateWorkflowRequest{Type: workflowType, Params: params}
	req, err := c.NewRequest(http.MethodPost, c.workflowsPath(), cwr)
	if err != nil {
		return nil, err
	}

	resp, err := c.Do(req.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	if err := checkResponse(resp); err != nil {
		c.logger.Error("create workflow", zap.String("type", workflowType), zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	var w Workflow
	if err := json.NewDecoder(resp.Body).Decode(&w); err != nil {
		return nil, err
	}
	return &w, nil
}

// GetWorkflow fetches the current status of a workflow.
func (c *Client) GetWorkflow(ctx context.Context, workflowID string) (*Workflow, error) {
	req, err := c.NewRequest(http.MethodGet, c.workflowItemPath(workflowID), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.Do(req.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var w Workflow
	if err := json.NewDecoder(resp.Body).Decode(&w); err != nil {
		return nil, err
	}
	return &w, nil
}
