package dto

import (
	"github.com/campusbridge/jobmarket/internal/model"
)

type CreateJobRequest struct {
	Title         string   `json:"title" binding:"required,max=150"`
	Description   string   `json:"description" binding:"required"`
	Tags          []string `json:"tags"`
	IsPaid        bool     `json:"is_paid"`
	StipendAmount int64    `json:"stipend_amount" binding:"min=0"`
}

type UpdateJobRequest struct {
	Title         string   `json:"title" binding:"required,max=150"`
	Description   string   `json:"description" binding:"required"`
	Tags          []string `json:"tags"`
	IsPaid        bool     `json:"is_paid"`
	StipendAmount int64    `json:"stipend_amount" binding:"min=0"`
}

type JobFilter struct {
	Search   string `form:"q"`
	Tag      string `form:"tag"`
	PaidOnly bool   `form:"paid_only"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=50"`
}

type PaginatedJobResponse struct {
	Data []model.Job    `json:"data"`
	Meta PaginationMeta `json:"meta"`
}
