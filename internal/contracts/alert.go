package contracts

import "Fluxo/internal/domain/alert"

type AlertsQuery struct {
	Days *int `form:"days" binding:"omitempty,min=0,max=365"`
}

type MarkPaidRequest struct {
	SourceType string `json:"source_type" binding:"required,oneof=TRANSACTION INVOICE"`
	SourceId   string `json:"source_id" binding:"required"`
}

type AlertsResponse struct {
	Items []*alert.DueItem `json:"items"`
	Total int              `json:"total"`
}
